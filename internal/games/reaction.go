package games

import (
	"math/rand"
	"time"
)

// ReactionGame implements the reaction time test: wait through a
// randomized delay, then respond as fast as possible. The session is a
// single trial and a response during the delay ends it as TooEarly.
type ReactionGame struct{}

const (
	reactionDelayFloorMS = 1000
	reactionDelaySpanMS  = 3000 // delay is 1000-3999 ms
)

// Spec returns metadata about the reaction time game.
func (g *ReactionGame) Spec() GameSpec {
	return GameSpec{
		ID:          "reaction",
		Name:        "Reaction Time",
		MetricLabel: "latency_ms",
	}
}

// Policy marks the game single-shot with an anticipation delay.
func (g *ReactionGame) Policy() Policy {
	return Policy{
		Terminal:     SingleShot,
		Anticipation: true,
	}
}

// SignalStimulus is the "go" signal; it has no content beyond its
// moment of issuance.
type SignalStimulus struct{}

// Kind identifies the stimulus family.
func (SignalStimulus) Kind() string { return "signal" }

// Generate returns the go signal.
func (g *ReactionGame) Generate(level int, rng *rand.Rand) (Stimulus, error) {
	return SignalStimulus{}, nil
}

// IssueDelay randomizes the anticipation window.
func (g *ReactionGame) IssueDelay(level int, s Stimulus, rng *rand.Rand) time.Duration {
	ms := reactionDelayFloorMS + rng.Intn(reactionDelaySpanMS)
	return time.Duration(ms) * time.Millisecond
}

// TrialTimeout reports no deadline; the player may take as long as they
// like once the signal shows.
func (g *ReactionGame) TrialTimeout(level int) time.Duration { return 0 }

// Evaluate records the elapsed latency verbatim. Any response after the
// signal is Correct; the engine classifies early responses before they
// reach the evaluator.
func (g *ReactionGame) Evaluate(trial Trial, resp Response) (Verdict, error) {
	return Verdict{
		Kind:         VerdictCorrect,
		Contribution: 1,
		LatencyMS:    float64(trial.Elapsed) / float64(time.Millisecond),
	}, nil
}
