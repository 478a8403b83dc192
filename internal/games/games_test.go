package games

import (
	"math/rand"
	"testing"
	"time"
)

func TestRegistryHasAllGames(t *testing.T) {
	expected := []string{"aim", "colorgrid", "memory", "plates", "reaction", "sequence", "shapes", "typing"}

	specs := List()
	if len(specs) != len(expected) {
		t.Fatalf("Expected %d registered games, got %d", len(expected), len(specs))
	}
	for i, id := range expected {
		if specs[i].ID != id {
			t.Errorf("Expected game %q at position %d, got %q", id, i, specs[i].ID)
		}
	}

	for _, id := range expected {
		game, ok := Get(id)
		if !ok {
			t.Errorf("Game %q not found in registry", id)
			continue
		}
		if game.Spec().ID != id {
			t.Errorf("Game %q reports spec id %q", id, game.Spec().ID)
		}
	}
}

// Selection games must always contain the expected answer among the
// candidates, at every level including saturation.
func TestGeneratedStimulusAlwaysWinnable(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for level := 1; level <= 80; level++ {
		t.Run("", func(t *testing.T) {
			grid, err := (&ColorGridGame{}).Generate(level, rng)
			if err != nil {
				t.Fatalf("colorgrid generate failed: %v", err)
			}
			g := grid.(ColorGridStimulus)
			if g.OddIndex < 0 || g.OddIndex >= len(g.Cells) {
				t.Errorf("colorgrid odd index %d out of range for %d cells", g.OddIndex, len(g.Cells))
			}

			field, err := (&ShapeGame{}).Generate(level, rng)
			if err != nil {
				t.Fatalf("shapes generate failed: %v", err)
			}
			f := field.(ShapeFieldStimulus)
			found := false
			for _, s := range f.Shapes {
				if s == f.Target {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("shapes field at level %d has no target match", level)
			}
		})
	}
}

func TestColorGridDifficultyScaling(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	cases := []struct {
		level int
		diff  int
		cells int
	}{
		{1, 48, 5},
		{10, 30, 14},
		{20, 10, 24},
		{50, 10, 54},
		{100, 10, 64},
	}
	for _, tc := range cases {
		s, err := (&ColorGridGame{}).Generate(tc.level, rng)
		if err != nil {
			t.Fatalf("generate level %d: %v", tc.level, err)
		}
		grid := s.(ColorGridStimulus)
		if grid.Diff != tc.diff {
			t.Errorf("Level %d: expected diff %d, got %d", tc.level, tc.diff, grid.Diff)
		}
		if len(grid.Cells) != tc.cells {
			t.Errorf("Level %d: expected %d cells, got %d", tc.level, tc.cells, len(grid.Cells))
		}
	}
}

func TestColorGridOutlierDiffers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		s, _ := (&ColorGridGame{}).Generate(30, rng)
		grid := s.(ColorGridStimulus)
		base := grid.Cells[(grid.OddIndex+1)%len(grid.Cells)]
		if grid.Cells[grid.OddIndex] == base {
			t.Fatal("Outlier cell is identical to the base color")
		}
	}
}

func TestSequenceGenerateAndEvaluate(t *testing.T) {
	game := &SequenceGame{}
	rng := rand.New(rand.NewSource(3))

	s, err := game.Generate(4, rng)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	seq := s.(SequenceStimulus)
	if len(seq.Digits) != 6 {
		t.Errorf("Expected 6 digits at level 4, got %d", len(seq.Digits))
	}
	for _, d := range seq.Digits {
		if d < 1 || d > 9 {
			t.Errorf("Digit %d outside 1-9", d)
		}
	}

	if d := game.IssueDelay(4, seq, rng); d != 6*700*time.Millisecond+time.Second {
		t.Errorf("Expected display window 5.2s, got %v", d)
	}

	trial := Trial{Level: 4, Stimulus: seq}
	v, err := game.Evaluate(trial, Response{Text: " " + joinDigits(seq.Digits) + " "})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if v.Kind != VerdictCorrect {
		t.Errorf("Expected correct for exact match, got %s", v.Kind)
	}

	v, _ = game.Evaluate(trial, Response{Text: "000000"})
	if v.Kind != VerdictIncorrect {
		t.Errorf("Expected incorrect for wrong digits, got %s", v.Kind)
	}
	if v.Expected != joinDigits(seq.Digits) {
		t.Errorf("Expected verdict to carry the answer %q, got %q", joinDigits(seq.Digits), v.Expected)
	}
}

func TestReactionLatency(t *testing.T) {
	game := &ReactionGame{}
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 100; i++ {
		d := game.IssueDelay(1, SignalStimulus{}, rng)
		if d < time.Second || d >= 4*time.Second {
			t.Fatalf("Anticipation delay %v outside [1s, 4s)", d)
		}
	}

	v, err := game.Evaluate(Trial{Stimulus: SignalStimulus{}, Elapsed: 234500 * time.Microsecond}, Response{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if v.Kind != VerdictCorrect {
		t.Errorf("Expected correct, got %s", v.Kind)
	}
	if v.LatencyMS != 234.5 {
		t.Errorf("Expected latency 234.5 ms, got %v", v.LatencyMS)
	}
}

func TestShapesEvaluateMatchesIdentity(t *testing.T) {
	game := &ShapeGame{}
	field := ShapeFieldStimulus{
		Shapes: []Shape{
			{Type: "circle", Color: "#FF6347"},
			{Type: "square", Color: "#6A5ACD"},
			{Type: "circle", Color: "#FF6347"},
		},
		Target: Shape{Type: "circle", Color: "#FF6347"},
	}
	trial := Trial{Level: 1, Stimulus: field}

	// Any shape with the target's identity counts, not one blessed index.
	for _, idx := range []int{0, 2} {
		v, err := game.Evaluate(trial, Response{Index: idx})
		if err != nil {
			t.Fatalf("evaluate index %d: %v", idx, err)
		}
		if v.Kind != VerdictCorrect {
			t.Errorf("Index %d: expected correct, got %s", idx, v.Kind)
		}
	}

	v, _ := game.Evaluate(trial, Response{Index: 1})
	if v.Kind != VerdictIncorrect {
		t.Errorf("Expected incorrect for wrong identity, got %s", v.Kind)
	}

	v, _ = game.Evaluate(trial, Response{Index: 99})
	if v.Kind != VerdictIncorrect {
		t.Errorf("Expected incorrect for out-of-range index, got %s", v.Kind)
	}
}

func TestShapesTimeoutScaling(t *testing.T) {
	game := &ShapeGame{}

	cases := []struct {
		level int
		want  time.Duration
	}{
		{1, 10 * time.Second},
		{5, 9 * time.Second},
		{24, 6 * time.Second},
		{25, 5 * time.Second},
		{100, 5 * time.Second},
	}
	for _, tc := range cases {
		if got := game.TrialTimeout(tc.level); got != tc.want {
			t.Errorf("Level %d: expected timeout %v, got %v", tc.level, tc.want, got)
		}
	}
}

func TestAimTargetInsideArena(t *testing.T) {
	game := &AimGame{}
	rng := rand.New(rand.NewSource(9))

	for i := 0; i < 100; i++ {
		s, err := game.Generate(1, rng)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		target := s.(ArenaStimulus)
		if target.X < 0 || target.X+target.Size > target.ArenaWidth {
			t.Errorf("Target x=%f size=%f outside arena width %f", target.X, target.Size, target.ArenaWidth)
		}
		if target.Y < 0 || target.Y+target.Size > target.ArenaHeight {
			t.Errorf("Target y=%f size=%f outside arena height %f", target.Y, target.Size, target.ArenaHeight)
		}
	}
}

func TestAimEvaluateContainment(t *testing.T) {
	game := &AimGame{}
	target := ArenaStimulus{X: 100, Y: 50, Size: 50, ArenaWidth: 800, ArenaHeight: 400}
	trial := Trial{Level: 1, Stimulus: target}

	cases := []struct {
		name string
		x, y float64
		want VerdictKind
	}{
		{"center", 125, 75, VerdictCorrect},
		{"top-left corner", 100, 50, VerdictCorrect},
		{"bottom-right corner", 150, 100, VerdictCorrect},
		{"just outside right", 150.5, 75, VerdictIncorrect},
		{"far away", 700, 300, VerdictIncorrect},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := game.Evaluate(trial, Response{X: tc.x, Y: tc.y})
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if v.Kind != tc.want {
				t.Errorf("Click (%f, %f): expected %s, got %s", tc.x, tc.y, tc.want, v.Kind)
			}
		})
	}
}

func TestPlatesWalkTableInOrder(t *testing.T) {
	game := &PlatesGame{}
	rng := rand.New(rand.NewSource(11))

	if game.Policy().TrialCount != 6 {
		t.Fatalf("Expected 6 plates, got %d", game.Policy().TrialCount)
	}

	answers := []string{"12", "8", "6", "29", "5", "74"}
	for level := 1; level <= 6; level++ {
		s, err := game.Generate(level, rng)
		if err != nil {
			t.Fatalf("generate level %d: %v", level, err)
		}
		plate := s.(PlateStimulus)
		if plate.Index != level-1 {
			t.Errorf("Level %d: expected plate index %d, got %d", level, level-1, plate.Index)
		}
		if plate.Plate.Number != answers[level-1] {
			t.Errorf("Level %d: expected number %s, got %s", level, answers[level-1], plate.Plate.Number)
		}

		v, _ := game.Evaluate(Trial{Level: level, Stimulus: plate}, Response{Text: answers[level-1]})
		if v.Kind != VerdictCorrect {
			t.Errorf("Level %d: expected correct, got %s", level, v.Kind)
		}
	}

	if _, err := game.Generate(0, rng); err == nil {
		t.Error("Expected error for level 0")
	}
}
