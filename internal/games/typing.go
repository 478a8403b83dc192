package games

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TypingGame implements the typing speed test: one sentence, typed as
// fast and accurately as possible. The session is a single trial; the
// verdict carries accuracy and words-per-minute.
type TypingGame struct{}

var typingSentences = []string{
	"The quick brown fox jumps over the lazy dog.",
	"Never underestimate the power of a good book.",
	"Innovation distinguishes between a leader and a follower.",
	"The only way to do great work is to love what you do.",
	"Life is what happens when you're busy making other plans.",
	"The future belongs to those who believe in the beauty of their dreams.",
	"Success is not final, failure is not fatal: it is the courage to continue that counts.",
	"The journey of a thousand miles begins with a single step.",
	"Do not go where the path may lead, go instead where there is no path and leave a trail.",
	"The best way to predict the future is to create it.",
}

// Spec returns metadata about the typing speed game.
func (g *TypingGame) Spec() GameSpec {
	return GameSpec{
		ID:          "typing",
		Name:        "Typing Speed",
		MetricLabel: "wpm",
	}
}

// Policy marks the game single-shot.
func (g *TypingGame) Policy() Policy {
	return Policy{Terminal: SingleShot}
}

// SentenceStimulus is the text to reproduce.
type SentenceStimulus struct {
	Text string `json:"text"`
}

// Kind identifies the stimulus family.
func (SentenceStimulus) Kind() string { return "sentence" }

// Generate picks a sentence from the corpus.
func (g *TypingGame) Generate(level int, rng *rand.Rand) (Stimulus, error) {
	return SentenceStimulus{Text: typingSentences[rng.Intn(len(typingSentences))]}, nil
}

// IssueDelay starts the clock as soon as the sentence is shown.
func (g *TypingGame) IssueDelay(level int, s Stimulus, rng *rand.Rand) time.Duration {
	return 0
}

// TrialTimeout reports no deadline.
func (g *TypingGame) TrialTimeout(level int) time.Duration { return 0 }

// Evaluate scores partial credit per matching character position and a
// whitespace-word WPM rate. The arithmetic runs on unrounded decimals;
// only the verdict values are rounded for display.
func (g *TypingGame) Evaluate(trial Trial, resp Response) (Verdict, error) {
	sentence, ok := trial.Stimulus.(SentenceStimulus)
	if !ok {
		return Verdict{}, fmt.Errorf("typing: unexpected stimulus %T", trial.Stimulus)
	}

	target := sentence.Text
	input := resp.Text

	matched := 0
	limit := len(input)
	if len(target) < limit {
		limit = len(target)
	}
	for i := 0; i < limit; i++ {
		if input[i] == target[i] {
			matched++
		}
	}

	accuracy := decimal.Zero
	if len(target) > 0 {
		accuracy = decimal.NewFromInt(int64(matched * 100)).
			Div(decimal.NewFromInt(int64(len(target))))
	}

	wpm := decimal.Zero
	if trial.Elapsed > 0 {
		words := decimal.NewFromInt(int64(len(strings.Fields(input))))
		minutes := decimal.NewFromFloat(trial.Elapsed.Minutes())
		wpm = words.Div(minutes)
	}

	wpmRounded := int(wpm.Round(0).IntPart())
	return Verdict{
		Kind:         VerdictCorrect,
		Contribution: wpmRounded,
		Accuracy:     accuracy.Round(0).InexactFloat64(),
		WPM:          wpmRounded,
	}, nil
}
