package games

import (
	"fmt"
	"math/rand"
	"time"
)

// MemoryGame implements the memory match game: a shuffled deck of
// paired cards, flipped two at a time. The deck is generated once and
// reused for the whole session; the session completes when every pair
// has been matched. Moves are tallied as attempts.
type MemoryGame struct {
	// Pairs is the number of card pairs in the deck; zero means the
	// default of 6. Valid range is 1-12.
	Pairs int
}

const memoryDefaultPairs = 6

var memoryValues = []string{
	"🍎", "🍌", "🍒", "🍇", "🍋", "🥭", "🍊", "🍓", "🍉", "🥝", "🍍", "🍑",
}

// NewMemoryGame creates a memory game with the given pair count, or the
// default when pairs is zero.
func NewMemoryGame(pairs int) *MemoryGame {
	return &MemoryGame{Pairs: pairs}
}

func (g *MemoryGame) pairs() int {
	if g.Pairs <= 0 {
		return memoryDefaultPairs
	}
	if g.Pairs > len(memoryValues) {
		return len(memoryValues)
	}
	return g.Pairs
}

// Spec returns metadata about the memory match game.
func (g *MemoryGame) Spec() GameSpec {
	return GameSpec{
		ID:          "memory",
		Name:        "Memory Match",
		MetricLabel: "matches",
	}
}

// Policy completes the session when all pairs are matched; the deck is
// reused across trials.
func (g *MemoryGame) Policy() Policy {
	return Policy{
		Terminal:      EndOnCompletion,
		TargetScore:   g.pairs(),
		ReuseStimulus: true,
	}
}

// DeckStimulus is the shuffled card deck. Matched state is derived from
// the session's resolved verdicts, never written back into the deck.
type DeckStimulus struct {
	Cards []string `json:"cards"`
	Pairs int      `json:"pairs"`
}

// Kind identifies the stimulus family.
func (DeckStimulus) Kind() string { return "deck" }

// Generate shuffles a fresh deck of pairs.
func (g *MemoryGame) Generate(level int, rng *rand.Rand) (Stimulus, error) {
	pairs := g.pairs()

	cards := make([]string, 0, pairs*2)
	for _, v := range memoryValues[:pairs] {
		cards = append(cards, v, v)
	}
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	return DeckStimulus{Cards: cards, Pairs: pairs}, nil
}

// IssueDelay shows the deck immediately.
func (g *MemoryGame) IssueDelay(level int, s Stimulus, rng *rand.Rand) time.Duration {
	return 0
}

// TrialTimeout reports no deadline.
func (g *MemoryGame) TrialTimeout(level int) time.Duration { return 0 }

// Evaluate judges one flipped pair. Selections that reuse a matched
// card, repeat an index, or fall outside the deck are rejected as
// invalid rather than scored.
func (g *MemoryGame) Evaluate(trial Trial, resp Response) (Verdict, error) {
	deck, ok := trial.Stimulus.(DeckStimulus)
	if !ok {
		return Verdict{}, fmt.Errorf("memory: unexpected stimulus %T", trial.Stimulus)
	}

	first, second := resp.Pair[0], resp.Pair[1]
	if first == second {
		return Verdict{}, fmt.Errorf("memory: pair must name two distinct cards")
	}
	for _, idx := range []int{first, second} {
		if idx < 0 || idx >= len(deck.Cards) {
			return Verdict{}, fmt.Errorf("memory: card index %d out of range", idx)
		}
		for _, m := range trial.Matched {
			if m == idx {
				return Verdict{}, fmt.Errorf("memory: card %d already matched", idx)
			}
		}
	}

	if deck.Cards[first] == deck.Cards[second] {
		return Verdict{
			Kind:         VerdictCorrect,
			Contribution: 1,
			Matched:      []int{first, second},
		}, nil
	}
	return Verdict{Kind: VerdictIncorrect}, nil
}
