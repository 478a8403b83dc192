package games

import (
	"fmt"
	"math/rand"
	"time"
)

// ShapeGame implements the target shape search: a field of random
// shapes with one guaranteed match for the displayed target. Clicking
// any shape whose type and color equal the target's is a hit; a wrong
// click or a missed per-trial deadline ends the session.
type ShapeGame struct{}

const (
	shapeBaseCount     = 5
	shapeCountPerLevel = 2
	shapeMaxCount      = 25 // 5x5 grid cap
	shapeTimeoutBaseS  = 10
	shapeTimeoutMinS   = 5
)

var shapeTypes = []string{"circle", "square", "triangle"}

var shapeColors = []string{"#FF6347", "#6A5ACD", "#3CB371", "#FFD700", "#4682B4", "#DA70D6"}

// Spec returns metadata about the shape recognition game.
func (g *ShapeGame) Spec() GameSpec {
	return GameSpec{
		ID:          "shapes",
		Name:        "Shape Recognition",
		MetricLabel: "score",
	}
}

// Policy ends the session on the first mistake, timeouts included.
func (g *ShapeGame) Policy() Policy {
	return Policy{Terminal: EndOnMistake}
}

// Shape is a candidate's identity: its type and color.
type Shape struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// ShapeFieldStimulus is the candidate field plus the target to find.
type ShapeFieldStimulus struct {
	Shapes []Shape `json:"shapes"`
	Target Shape   `json:"target"`
}

// Kind identifies the stimulus family.
func (ShapeFieldStimulus) Kind() string { return "shape_field" }

// Generate builds the field: count = min(25, 5+2*level), all shapes
// random, then one random index overwritten with the target so the
// trial is always winnable.
func (g *ShapeGame) Generate(level int, rng *rand.Rand) (Stimulus, error) {
	count := shapeBaseCount + shapeCountPerLevel*level
	if count > shapeMaxCount {
		count = shapeMaxCount
	}

	target := Shape{
		Type:  shapeTypes[rng.Intn(len(shapeTypes))],
		Color: shapeColors[rng.Intn(len(shapeColors))],
	}

	shapes := make([]Shape, count)
	for i := range shapes {
		shapes[i] = Shape{
			Type:  shapeTypes[rng.Intn(len(shapeTypes))],
			Color: shapeColors[rng.Intn(len(shapeColors))],
		}
	}
	shapes[rng.Intn(count)] = target

	return ShapeFieldStimulus{Shapes: shapes, Target: target}, nil
}

// IssueDelay shows the field immediately.
func (g *ShapeGame) IssueDelay(level int, s Stimulus, rng *rand.Rand) time.Duration {
	return 0
}

// TrialTimeout shrinks with the level: max(5, 10-level/5) seconds.
func (g *ShapeGame) TrialTimeout(level int) time.Duration {
	s := shapeTimeoutBaseS - level/5
	if s < shapeTimeoutMinS {
		s = shapeTimeoutMinS
	}
	return time.Duration(s) * time.Second
}

// Evaluate compares the clicked shape's identity to the target's. Any
// matching shape counts, not just the injected index.
func (g *ShapeGame) Evaluate(trial Trial, resp Response) (Verdict, error) {
	field, ok := trial.Stimulus.(ShapeFieldStimulus)
	if !ok {
		return Verdict{}, fmt.Errorf("shapes: unexpected stimulus %T", trial.Stimulus)
	}

	expected := fmt.Sprintf("%s %s", field.Target.Color, field.Target.Type)
	if resp.Index < 0 || resp.Index >= len(field.Shapes) {
		return Verdict{Kind: VerdictIncorrect, Expected: expected}, nil
	}

	if field.Shapes[resp.Index] == field.Target {
		return Verdict{Kind: VerdictCorrect, Contribution: 1}, nil
	}
	return Verdict{Kind: VerdictIncorrect, Expected: expected}, nil
}
