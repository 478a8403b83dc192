package games

import (
	"math/rand"
	"sort"
	"time"
)

// Game is one perceptual mini-game: it generates stimuli for a level
// and judges responses against them. Implementations are stateless;
// all per-session state lives in the trial engine.
type Game interface {
	// Spec returns metadata about the game.
	Spec() GameSpec

	// Policy returns the session rules the engine applies for this game.
	Policy() Policy

	// Generate produces the stimulus for a trial at the given level. The
	// expected answer is always derivable from the returned stimulus and,
	// for selection games, structurally present among the candidates.
	Generate(level int, rng *rand.Rand) (Stimulus, error)

	// IssueDelay is how long the engine waits before the stimulus counts
	// as issued (anticipation delay or display window). Zero means the
	// trial is live immediately.
	IssueDelay(level int, s Stimulus, rng *rand.Rand) time.Duration

	// TrialTimeout is the per-trial response deadline. Zero means no
	// deadline.
	TrialTimeout(level int) time.Duration

	// Evaluate judges a response against the active trial.
	Evaluate(trial Trial, resp Response) (Verdict, error)
}

// GameSpec is the registry metadata for a game.
type GameSpec struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MetricLabel string `json:"metric_label"`
}

// TerminalPolicy selects how a session ends.
type TerminalPolicy string

const (
	// EndOnMistake ends the session on the first non-Correct verdict.
	EndOnMistake TerminalPolicy = "mistake"

	// EndOnCountdown ends the session only when the session countdown
	// expires; wrong answers are tallied as misses.
	EndOnCountdown TerminalPolicy = "countdown"

	// EndAfterTrials ends the session after a fixed number of trials,
	// keeping a running correct/incorrect tally.
	EndAfterTrials TerminalPolicy = "fixed_trials"

	// SingleShot sessions are exactly one trial.
	SingleShot TerminalPolicy = "single_shot"

	// EndOnCompletion ends the session once the score reaches the
	// policy's target.
	EndOnCompletion TerminalPolicy = "completion"
)

// Policy bundles the session rules the engine needs from a game.
type Policy struct {
	Terminal TerminalPolicy

	// Anticipation marks games where a response before the stimulus is
	// issued is a TooEarly verdict instead of an ignored command.
	Anticipation bool

	// Countdown is the session time box for EndOnCountdown games.
	Countdown time.Duration

	// Reissue relocates the stimulus on this fixed cadence for the whole
	// session, independent of responses. Zero disables relocation.
	Reissue time.Duration

	// TrialCount is the session length for EndAfterTrials games.
	TrialCount int

	// TargetScore ends an EndOnCompletion session when reached.
	TargetScore int

	// ReuseStimulus keeps one generated stimulus for the whole session
	// instead of generating a fresh one per trial.
	ReuseStimulus bool
}

// Stimulus is the generated challenge content for one trial. Concrete
// types live next to their games.
type Stimulus interface {
	Kind() string
}

// Response is the raw captured user input for one trial. Games read the
// fields relevant to their input family.
type Response struct {
	Index int     `json:"index"`
	Pair  [2]int  `json:"pair"`
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Trial is the read-only view of the active trial handed to Evaluate.
type Trial struct {
	Level    int
	Stimulus Stimulus

	// Elapsed is the monotonic time since the stimulus was issued.
	Elapsed time.Duration

	// Matched lists candidate indices already resolved Correct in this
	// session; only populated for ReuseStimulus games.
	Matched []int
}

// VerdictKind classifies the outcome of evaluating a response.
type VerdictKind string

const (
	VerdictCorrect   VerdictKind = "correct"
	VerdictIncorrect VerdictKind = "incorrect"
	VerdictTooEarly  VerdictKind = "too_early"
	VerdictTimedOut  VerdictKind = "timed_out"
)

// Verdict is the classified outcome of one trial plus its quality
// numbers where the game family produces them.
type Verdict struct {
	Kind VerdictKind `json:"kind"`

	// Contribution is added to the session score on Correct.
	Contribution int `json:"contribution,omitempty"`

	// Expected is shown to the player on Incorrect.
	Expected string `json:"expected,omitempty"`

	// LatencyMS is the response latency in fractional milliseconds for
	// timed-latency games.
	LatencyMS float64 `json:"latency_ms,omitempty"`

	// Accuracy is the 0-100 typed-text accuracy, rounded for display.
	Accuracy float64 `json:"accuracy,omitempty"`

	// WPM is the rounded words-per-minute rate for typed-text games.
	WPM int `json:"wpm,omitempty"`

	// Matched carries the candidate indices this Correct verdict locked
	// in, for ReuseStimulus games.
	Matched []int `json:"matched,omitempty"`
}

// Registry holds all available games.
var Registry = make(map[string]Game)

// Register adds a game to the registry.
func Register(game Game) {
	Registry[game.Spec().ID] = game
}

// Get retrieves a game by id.
func Get(id string) (Game, bool) {
	game, exists := Registry[id]
	return game, exists
}

// List returns the specs of all registered games, sorted by id.
func List() []GameSpec {
	specs := make([]GameSpec, 0, len(Registry))
	for _, game := range Registry {
		specs = append(specs, game.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs
}

// init registers all games.
func init() {
	Register(&ReactionGame{})
	Register(&SequenceGame{})
	Register(&ColorGridGame{})
	Register(&ShapeGame{})
	Register(&AimGame{})
	Register(&TypingGame{})
	Register(&PlatesGame{})
	Register(NewMemoryGame(0))
}
