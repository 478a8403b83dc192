package games

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// ColorGridGame implements the odd-color-out test: a grid of identical
// color swatches with one cell nudged off the base color. The channel
// difference shrinks and the grid grows as the level climbs. One wrong
// pick ends the session.
type ColorGridGame struct{}

const (
	colorGridDiffBase  = 50
	colorGridDiffStep  = 2
	colorGridDiffFloor = 10 // minimum detectable difference per channel
	colorGridMinCells  = 4
	colorGridMaxCells  = 64 // capped to keep the grid renderable
)

// Spec returns metadata about the color perception game.
func (g *ColorGridGame) Spec() GameSpec {
	return GameSpec{
		ID:          "colorgrid",
		Name:        "Color Perception",
		MetricLabel: "score",
	}
}

// Policy ends the session on the first mistake.
func (g *ColorGridGame) Policy() Policy {
	return Policy{Terminal: EndOnMistake}
}

// RGB is an 8-bit color triple.
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// ColorGridStimulus is the swatch grid with its outlier.
type ColorGridStimulus struct {
	Cells    []RGB `json:"cells"`
	OddIndex int   `json:"odd_index"`
	Diff     int   `json:"diff"`
}

// Kind identifies the stimulus family.
func (ColorGridStimulus) Kind() string { return "color_grid" }

// Generate builds the grid for the level: cells = min(64, 4+level),
// per-channel difference = max(10, 50-2*level). The outlier is written
// over one randomly chosen index so the right answer always exists.
func (g *ColorGridGame) Generate(level int, rng *rand.Rand) (Stimulus, error) {
	diff := colorGridDiffBase - colorGridDiffStep*level
	if diff < colorGridDiffFloor {
		diff = colorGridDiffFloor
	}

	cells := colorGridMinCells + level
	if cells > colorGridMaxCells {
		cells = colorGridMaxCells
	}

	base := RGB{R: rng.Intn(256), G: rng.Intn(256), B: rng.Intn(256)}
	odd := RGB{
		R: nudgeChannel(base.R, diff, rng),
		G: nudgeChannel(base.G, diff, rng),
		B: nudgeChannel(base.B, diff, rng),
	}

	grid := make([]RGB, cells)
	oddIndex := rng.Intn(cells)
	for i := range grid {
		if i == oddIndex {
			grid[i] = odd
		} else {
			grid[i] = base
		}
	}

	return ColorGridStimulus{Cells: grid, OddIndex: oddIndex, Diff: diff}, nil
}

// nudgeChannel shifts a channel by +/-diff. The direction flips when it
// would leave the 8-bit range, so the nudged value never collapses back
// onto the original.
func nudgeChannel(v, diff int, rng *rand.Rand) int {
	up := rng.Intn(2) == 0
	if up && v+diff > 255 {
		up = false
	} else if !up && v-diff < 0 {
		up = true
	}
	if up {
		return v + diff
	}
	return v - diff
}

// IssueDelay shows the grid immediately.
func (g *ColorGridGame) IssueDelay(level int, s Stimulus, rng *rand.Rand) time.Duration {
	return 0
}

// TrialTimeout reports no deadline.
func (g *ColorGridGame) TrialTimeout(level int) time.Duration { return 0 }

// Evaluate checks the selected cell's identity against the outlier.
func (g *ColorGridGame) Evaluate(trial Trial, resp Response) (Verdict, error) {
	grid, ok := trial.Stimulus.(ColorGridStimulus)
	if !ok {
		return Verdict{}, fmt.Errorf("colorgrid: unexpected stimulus %T", trial.Stimulus)
	}

	if resp.Index == grid.OddIndex {
		return Verdict{Kind: VerdictCorrect, Contribution: 1}, nil
	}
	return Verdict{Kind: VerdictIncorrect, Expected: strconv.Itoa(grid.OddIndex)}, nil
}
