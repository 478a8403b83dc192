package games

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// PlatesGame implements the color-blindness screening: a fixed run of
// Ishihara-style plates, each hiding a number. Every plate is shown
// exactly once; wrong answers are tallied and the session ends after
// the last plate.
type PlatesGame struct{}

// Plate is one screening plate: the hidden number plus the color pair
// that conceals it.
type Plate struct {
	Number      string `json:"number"`
	MainColor   string `json:"main_color"`
	HiddenColor string `json:"hidden_color"`
}

var screeningPlates = []Plate{
	{Number: "12", MainColor: "#8B0000", HiddenColor: "#006400"},
	{Number: "8", MainColor: "#006400", HiddenColor: "#8B0000"},
	{Number: "6", MainColor: "#00008B", HiddenColor: "#8B0000"},
	{Number: "29", MainColor: "#8B0000", HiddenColor: "#006400"},
	{Number: "5", MainColor: "#006400", HiddenColor: "#8B0000"},
	{Number: "74", MainColor: "#8B0000", HiddenColor: "#006400"},
}

// Spec returns metadata about the screening game.
func (g *PlatesGame) Spec() GameSpec {
	return GameSpec{
		ID:          "plates",
		Name:        "Color Blindness Screening",
		MetricLabel: "correct",
	}
}

// Policy fixes the session at one trial per plate.
func (g *PlatesGame) Policy() Policy {
	return Policy{
		Terminal:   EndAfterTrials,
		TrialCount: len(screeningPlates),
	}
}

// PlateStimulus is the plate currently shown plus its position in the
// run.
type PlateStimulus struct {
	Plate Plate `json:"plate"`
	Index int   `json:"index"`
	Total int   `json:"total"`
}

// Kind identifies the stimulus family.
func (PlateStimulus) Kind() string { return "plate" }

// Generate returns the plate for the current level; the level advances
// once per trial, so the run walks the table in order.
func (g *PlatesGame) Generate(level int, rng *rand.Rand) (Stimulus, error) {
	if level < 1 {
		return nil, fmt.Errorf("plates: level must be >= 1, got %d", level)
	}
	idx := (level - 1) % len(screeningPlates)
	return PlateStimulus{
		Plate: screeningPlates[idx],
		Index: idx,
		Total: len(screeningPlates),
	}, nil
}

// IssueDelay shows the plate immediately.
func (g *PlatesGame) IssueDelay(level int, s Stimulus, rng *rand.Rand) time.Duration {
	return 0
}

// TrialTimeout reports no deadline.
func (g *PlatesGame) TrialTimeout(level int) time.Duration { return 0 }

// Evaluate requires the exact hidden number.
func (g *PlatesGame) Evaluate(trial Trial, resp Response) (Verdict, error) {
	plate, ok := trial.Stimulus.(PlateStimulus)
	if !ok {
		return Verdict{}, fmt.Errorf("plates: unexpected stimulus %T", trial.Stimulus)
	}

	if strings.TrimSpace(resp.Text) == plate.Plate.Number {
		return Verdict{Kind: VerdictCorrect, Contribution: 1}, nil
	}
	return Verdict{Kind: VerdictIncorrect, Expected: plate.Plate.Number}, nil
}
