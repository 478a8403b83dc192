// Package engine implements the trial state machine shared by every
// mini-game: it owns the session, issues stimuli, runs the clocks and
// applies each game's terminal policy to the verdicts.
package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/perceptlab/brain-trainer-go/internal/clock"
	"github.com/perceptlab/brain-trainer-go/internal/games"
)

// Phase is what the session is currently waiting for.
type Phase string

const (
	// PhaseIdle is the initial state; no session exists.
	PhaseIdle Phase = "idle"

	// PhaseAwaiting means a stimulus is generated but not yet issued
	// (anticipation delay or display window running).
	PhaseAwaiting Phase = "awaiting"

	// PhaseActive means the stimulus is issued and a response is awaited.
	PhaseActive Phase = "active"

	// PhaseResolved is the transient state between a verdict and the
	// decision to continue or terminate; commands run to completion, so
	// it is never observable from outside.
	PhaseResolved Phase = "resolved"

	// PhaseTerminal means the session is over; only Start and Reset are
	// accepted.
	PhaseTerminal Phase = "terminal"
)

// Snapshot is the read-only view the host renders. It is a value copy;
// mutating it has no effect on the engine.
type Snapshot struct {
	Game            string         `json:"game"`
	Phase           Phase          `json:"phase"`
	Level           int            `json:"level"`
	Score           int            `json:"score"`
	Attempts        int            `json:"attempts"`
	TimeRemainingMS *float64       `json:"time_remaining_ms,omitempty"`
	LastVerdict     *games.Verdict `json:"last_verdict,omitempty"`
	StimulusKind    string         `json:"stimulus_kind,omitempty"`
	Stimulus        games.Stimulus `json:"stimulus,omitempty"`
	Matched         []int          `json:"matched,omitempty"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler replaces the real clock, typically with clock.Manual in
// tests.
func WithScheduler(s clock.Scheduler) Option {
	return func(e *Engine) { e.clk = s }
}

// WithSeed makes stimulus generation reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// WithOnChange registers a hook invoked with a fresh snapshot after
// every state change, including clock-driven ones. The hook runs
// outside the engine lock and must not block for long.
func WithOnChange(fn func(Snapshot)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// Engine runs one game's sessions. One engine instance per mounted
// game; the mutex serializes commands so each runs to completion before
// the next is accepted.
type Engine struct {
	mu       sync.Mutex
	game     games.Game
	spec     games.GameSpec
	policy   games.Policy
	clk      clock.Scheduler
	rng      *rand.Rand
	onChange func(Snapshot)

	phase       Phase
	level       int
	score       int
	attempts    int
	lastVerdict *games.Verdict
	stimulus    games.Stimulus
	issuedAt    time.Time
	resolved    bool
	matched     []int

	// epoch tags session-scoped callbacks; a callback whose epoch no
	// longer matches fires into a superseded session and is discarded.
	epoch uint64

	// trialGen tags trial-scoped callbacks and advances on every trial
	// start. A deadline whose timer fired just before Cancel reached it
	// carries the old generation and is discarded instead of judging
	// the next trial.
	trialGen uint64

	hasCountdown  bool
	timeRemaining time.Duration

	issueHandle     clock.Handle
	timeoutHandle   clock.Handle
	countdownHandle clock.Handle
	reissueHandle   clock.Handle
}

// New creates an idle engine for the given game.
func New(game games.Game, opts ...Option) *Engine {
	e := &Engine{
		game:   game,
		spec:   game.Spec(),
		policy: game.Policy(),
		clk:    clock.Real{},
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		phase:  PhaseIdle,
		level:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Spec returns the mounted game's metadata.
func (e *Engine) Spec() games.GameSpec { return e.spec }

// Snapshot returns the current read-only state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Start begins a fresh session. It is accepted from Idle and Terminal
// and ignored otherwise. A generator contract violation aborts the
// start and is returned to the caller.
func (e *Engine) Start() (Snapshot, error) {
	e.mu.Lock()
	if e.phase != PhaseIdle && e.phase != PhaseTerminal {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, nil
	}

	e.epoch++
	e.cancelAllLocked()
	e.resetSessionLocked()

	if e.policy.Terminal == games.EndOnCountdown && e.policy.Countdown > 0 {
		e.hasCountdown = true
		e.timeRemaining = e.policy.Countdown
		epoch := e.epoch
		e.countdownHandle = e.clk.Countdown(e.policy.Countdown, time.Second,
			func(remaining time.Duration) { e.onCountdownTick(epoch, remaining) },
			func() { e.onCountdownExpired(epoch) },
		)
	}
	if e.policy.Reissue > 0 {
		e.scheduleReissueLocked()
	}

	if err := e.beginTrialLocked(); err != nil {
		e.cancelAllLocked()
		e.resetSessionLocked()
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, err
	}

	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap, nil
}

// Respond submits the user's response for the active trial. Responses
// in any other phase, or after the trial already resolved, leave the
// engine untouched. During an anticipation delay the response itself is
// the mistake and resolves the trial as TooEarly.
func (e *Engine) Respond(resp games.Response) Snapshot {
	e.mu.Lock()

	switch e.phase {
	case PhaseAwaiting:
		if !e.policy.Anticipation {
			snap := e.snapshotLocked()
			e.mu.Unlock()
			return snap
		}
		e.resolveLocked(games.Verdict{Kind: games.VerdictTooEarly})

	case PhaseActive:
		if e.resolved {
			snap := e.snapshotLocked()
			e.mu.Unlock()
			return snap
		}
		trial := games.Trial{
			Level:    e.level,
			Stimulus: e.stimulus,
			Elapsed:  e.clk.Now().Sub(e.issuedAt),
			Matched:  append([]int(nil), e.matched...),
		}
		verdict, err := e.game.Evaluate(trial, resp)
		if err != nil {
			// Malformed response; keep the last valid state.
			snap := e.snapshotLocked()
			e.mu.Unlock()
			return snap
		}
		e.resolveLocked(verdict)

	default:
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap
	}

	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap
}

// Reset cancels all outstanding clock handles synchronously, discards
// the session and returns to Idle. It is accepted from every phase.
func (e *Engine) Reset() Snapshot {
	e.mu.Lock()
	e.epoch++
	e.cancelAllLocked()
	e.resetSessionLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return snap
}

// resolveLocked books a verdict against the current trial and applies
// the terminal policy.
func (e *Engine) resolveLocked(verdict games.Verdict) {
	e.cancelTrialLocked()
	e.resolved = true
	e.phase = PhaseResolved
	e.attempts++
	e.lastVerdict = &verdict

	correct := verdict.Kind == games.VerdictCorrect
	if correct {
		e.score += verdict.Contribution
		e.matched = append(e.matched, verdict.Matched...)
	}

	fresh := !e.policy.ReuseStimulus

	switch e.policy.Terminal {
	case games.SingleShot:
		e.terminalLocked()

	case games.EndOnMistake:
		if !correct {
			e.terminalLocked()
			return
		}
		e.level++
		e.continueLocked(fresh)

	case games.EndOnCountdown:
		if correct {
			e.level++
		}
		// A missed target stays in place; only a hit relocates it.
		e.continueLocked(fresh && correct)

	case games.EndAfterTrials:
		if e.attempts >= e.policy.TrialCount {
			e.terminalLocked()
			return
		}
		// The level is the trial index here, so it advances on every
		// resolution to walk the fixed set.
		e.level++
		e.continueLocked(fresh)

	case games.EndOnCompletion:
		if correct && e.score >= e.policy.TargetScore {
			e.terminalLocked()
			return
		}
		e.continueLocked(fresh)

	default:
		e.terminalLocked()
	}
}

// continueLocked advances to the next trial, discarding the current
// stimulus when the policy calls for a fresh one.
func (e *Engine) continueLocked(fresh bool) {
	if fresh {
		e.stimulus = nil
	}
	if err := e.beginTrialLocked(); err != nil {
		e.terminalLocked()
	}
}

// beginTrialLocked prepares the next trial: a stimulus, the issuance
// moment and the per-trial deadline. Advancing the generation here is
// what retires any deadline still in flight for the previous trial.
func (e *Engine) beginTrialLocked() error {
	e.trialGen++
	if e.stimulus == nil {
		stimulus, err := e.game.Generate(e.level, e.rng)
		if err != nil {
			return err
		}
		e.stimulus = stimulus
	}
	e.resolved = false

	delay := e.game.IssueDelay(e.level, e.stimulus, e.rng)
	if delay > 0 {
		e.phase = PhaseAwaiting
		e.issuedAt = time.Time{}
		epoch, gen := e.epoch, e.trialGen
		e.issueHandle = e.clk.AfterFunc(delay, func() { e.onIssue(epoch, gen) })
		return nil
	}

	e.issueLocked()
	return nil
}

// issueLocked marks the stimulus as issued and arms the trial deadline.
func (e *Engine) issueLocked() {
	e.phase = PhaseActive
	e.issuedAt = e.clk.Now()
	if d := e.game.TrialTimeout(e.level); d > 0 {
		epoch, gen := e.epoch, e.trialGen
		e.timeoutHandle = e.clk.AfterFunc(d, func() { e.onTrialTimeout(epoch, gen) })
	}
}

// scheduleReissueLocked arms the next link of the relocation chain.
// The chain runs on a fixed session cadence, untouched by responses.
func (e *Engine) scheduleReissueLocked() {
	epoch := e.epoch
	e.reissueHandle = e.clk.AfterFunc(e.policy.Reissue, func() { e.onReissue(epoch) })
}

// onIssue fires when an anticipation delay or display window elapses.
func (e *Engine) onIssue(epoch, gen uint64) {
	e.mu.Lock()
	if epoch != e.epoch || gen != e.trialGen || e.phase != PhaseAwaiting {
		e.mu.Unlock()
		return
	}
	e.issueLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// onTrialTimeout fires when the per-trial deadline passes with no
// response, resolving the trial as TimedOut. A deadline from an
// already-resolved trial carries a stale generation and is dropped.
func (e *Engine) onTrialTimeout(epoch, gen uint64) {
	e.mu.Lock()
	if epoch != e.epoch || gen != e.trialGen || e.phase != PhaseActive || e.resolved {
		e.mu.Unlock()
		return
	}

	e.resolveLocked(games.Verdict{Kind: games.VerdictTimedOut})

	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// onReissue relocates the stimulus on the fixed cadence and re-arms the
// chain, with no verdict booked.
func (e *Engine) onReissue(epoch uint64) {
	e.mu.Lock()
	if epoch != e.epoch || (e.phase != PhaseActive && e.phase != PhaseAwaiting) {
		e.mu.Unlock()
		return
	}

	e.stimulus = nil
	if err := e.beginTrialLocked(); err != nil {
		e.terminalLocked()
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.notify(snap)
		return
	}
	e.scheduleReissueLocked()

	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

func (e *Engine) onCountdownTick(epoch uint64, remaining time.Duration) {
	e.mu.Lock()
	if epoch != e.epoch || e.phase == PhaseTerminal || e.phase == PhaseIdle {
		e.mu.Unlock()
		return
	}
	e.timeRemaining = remaining
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// onCountdownExpired ends the session regardless of any trial in
// flight.
func (e *Engine) onCountdownExpired(epoch uint64) {
	e.mu.Lock()
	if epoch != e.epoch || e.phase == PhaseTerminal || e.phase == PhaseIdle {
		e.mu.Unlock()
		return
	}
	e.timeRemaining = 0
	e.terminalLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

func (e *Engine) terminalLocked() {
	e.phase = PhaseTerminal
	e.cancelTrialLocked()
	e.cancelSessionClocksLocked()
}

func (e *Engine) cancelSessionClocksLocked() {
	if e.countdownHandle != nil {
		e.countdownHandle.Cancel()
		e.countdownHandle = nil
	}
	if e.reissueHandle != nil {
		e.reissueHandle.Cancel()
		e.reissueHandle = nil
	}
}

func (e *Engine) cancelTrialLocked() {
	if e.issueHandle != nil {
		e.issueHandle.Cancel()
		e.issueHandle = nil
	}
	if e.timeoutHandle != nil {
		e.timeoutHandle.Cancel()
		e.timeoutHandle = nil
	}
}

func (e *Engine) cancelAllLocked() {
	e.cancelTrialLocked()
	e.cancelSessionClocksLocked()
}

func (e *Engine) resetSessionLocked() {
	e.phase = PhaseIdle
	e.level = 1
	e.score = 0
	e.attempts = 0
	e.lastVerdict = nil
	e.stimulus = nil
	e.matched = nil
	e.resolved = false
	e.hasCountdown = false
	e.timeRemaining = 0
	e.issuedAt = time.Time{}
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Game:     e.spec.ID,
		Phase:    e.phase,
		Level:    e.level,
		Score:    e.score,
		Attempts: e.attempts,
	}
	if e.hasCountdown {
		ms := float64(e.timeRemaining) / float64(time.Millisecond)
		snap.TimeRemainingMS = &ms
	}
	if e.lastVerdict != nil {
		verdict := *e.lastVerdict
		snap.LastVerdict = &verdict
	}
	if e.stimulus != nil {
		snap.StimulusKind = e.stimulus.Kind()
		snap.Stimulus = e.stimulus
	}
	if len(e.matched) > 0 {
		snap.Matched = append([]int(nil), e.matched...)
	}
	return snap
}

// notify runs outside the lock so the hook can read the engine again.
func (e *Engine) notify(snap Snapshot) {
	if e.onChange != nil {
		e.onChange(snap)
	}
}
