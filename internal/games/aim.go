package games

import (
	"fmt"
	"math/rand"
	"time"
)

// AimGame implements the aim trainer: a target appears at a random spot
// in the arena and must be clicked before it moves. The session is a
// 30 second countdown; wrong clicks are tallied as misses and a target
// left unclicked simply relocates.
type AimGame struct{}

const (
	aimArenaWidth  = 800.0
	aimArenaHeight = 400.0
	aimTargetSize  = 50.0
	aimSessionSecs = 30
	aimReissueMS   = 800 // target relocates on this cadence
)

// Spec returns metadata about the aim trainer.
func (g *AimGame) Spec() GameSpec {
	return GameSpec{
		ID:          "aim",
		Name:        "Aim Trainer",
		MetricLabel: "hits",
	}
}

// Policy time-boxes the session; only the countdown ends it. The target
// relocates on a fixed cadence regardless of clicks.
func (g *AimGame) Policy() Policy {
	return Policy{
		Terminal:  EndOnCountdown,
		Countdown: aimSessionSecs * time.Second,
		Reissue:   aimReissueMS * time.Millisecond,
	}
}

// ArenaStimulus is the target box inside the arena.
type ArenaStimulus struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Size        float64 `json:"size"`
	ArenaWidth  float64 `json:"arena_width"`
	ArenaHeight float64 `json:"arena_height"`
}

// Kind identifies the stimulus family.
func (ArenaStimulus) Kind() string { return "arena_target" }

// Generate places the target fully inside the arena.
func (g *AimGame) Generate(level int, rng *rand.Rand) (Stimulus, error) {
	return ArenaStimulus{
		X:           rng.Float64() * (aimArenaWidth - aimTargetSize),
		Y:           rng.Float64() * (aimArenaHeight - aimTargetSize),
		Size:        aimTargetSize,
		ArenaWidth:  aimArenaWidth,
		ArenaHeight: aimArenaHeight,
	}, nil
}

// IssueDelay shows the target immediately.
func (g *AimGame) IssueDelay(level int, s Stimulus, rng *rand.Rand) time.Duration {
	return 0
}

// TrialTimeout reports no deadline; relocation runs on the session
// reissue cadence instead of a per-trial one.
func (g *AimGame) TrialTimeout(level int) time.Duration { return 0 }

// Evaluate resolves the click to containment in the target box, not to
// pixel distance.
func (g *AimGame) Evaluate(trial Trial, resp Response) (Verdict, error) {
	target, ok := trial.Stimulus.(ArenaStimulus)
	if !ok {
		return Verdict{}, fmt.Errorf("aim: unexpected stimulus %T", trial.Stimulus)
	}

	inside := resp.X >= target.X && resp.X <= target.X+target.Size &&
		resp.Y >= target.Y && resp.Y <= target.Y+target.Size
	if inside {
		return Verdict{Kind: VerdictCorrect, Contribution: 1}, nil
	}
	return Verdict{Kind: VerdictIncorrect}, nil
}
