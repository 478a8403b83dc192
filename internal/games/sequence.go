package games

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// SequenceGame implements number sequence recall: a digit sequence is
// shown for a level-scaled window, then typed back from memory. The
// first wrong answer ends the session.
type SequenceGame struct{}

const (
	sequenceBaseLength   = 2 // sequence length is level+2
	sequenceDigitMax     = 9 // digits are 1-9
	sequencePerDigitMS   = 700
	sequenceDisplayMinMS = 1000
)

// Spec returns metadata about the sequence recall game.
func (g *SequenceGame) Spec() GameSpec {
	return GameSpec{
		ID:          "sequence",
		Name:        "Number Sequence",
		MetricLabel: "score",
	}
}

// Policy ends the session on the first mistake.
func (g *SequenceGame) Policy() Policy {
	return Policy{Terminal: EndOnMistake}
}

// SequenceStimulus is the digit sequence to memorize.
type SequenceStimulus struct {
	Digits []int `json:"digits"`
}

// Kind identifies the stimulus family.
func (SequenceStimulus) Kind() string { return "sequence" }

// Generate produces a level+2 digit sequence of digits 1-9.
func (g *SequenceGame) Generate(level int, rng *rand.Rand) (Stimulus, error) {
	length := level + sequenceBaseLength
	digits := make([]int, length)
	for i := range digits {
		digits[i] = rng.Intn(sequenceDigitMax) + 1
	}
	return SequenceStimulus{Digits: digits}, nil
}

// IssueDelay is the display window: the player reads the sequence while
// it is shown and may only answer once it disappears.
func (g *SequenceGame) IssueDelay(level int, s Stimulus, rng *rand.Rand) time.Duration {
	seq, ok := s.(SequenceStimulus)
	if !ok {
		return 0
	}
	ms := len(seq.Digits)*sequencePerDigitMS + sequenceDisplayMinMS
	return time.Duration(ms) * time.Millisecond
}

// TrialTimeout reports no deadline.
func (g *SequenceGame) TrialTimeout(level int) time.Duration { return 0 }

// Evaluate requires an exact ordered match of the full sequence.
func (g *SequenceGame) Evaluate(trial Trial, resp Response) (Verdict, error) {
	seq, ok := trial.Stimulus.(SequenceStimulus)
	if !ok {
		return Verdict{}, fmt.Errorf("sequence: unexpected stimulus %T", trial.Stimulus)
	}

	expected := joinDigits(seq.Digits)
	input := strings.TrimSpace(resp.Text)

	if input == expected {
		return Verdict{Kind: VerdictCorrect, Contribution: 1}, nil
	}
	return Verdict{Kind: VerdictIncorrect, Expected: expected}, nil
}

func joinDigits(digits []int) string {
	var b strings.Builder
	for _, d := range digits {
		fmt.Fprintf(&b, "%d", d)
	}
	return b.String()
}
