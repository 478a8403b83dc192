package clock

import (
	"sync"
	"time"
)

// Handle is a scheduled callback that can be cancelled. Cancelling a
// handle that already fired is a no-op; cancelling before it fires
// guarantees the callback never runs again.
type Handle interface {
	Cancel()
}

// Scheduler is the single time-keeping dependency of the trial engine.
// The Real implementation wraps the runtime timers; Manual is an
// advanceable fake for deterministic tests.
type Scheduler interface {
	// Now returns the current time from a monotonic source.
	Now() time.Time

	// AfterFunc invokes fn once after d elapses.
	AfterFunc(d time.Duration, fn func()) Handle

	// Countdown invokes onTick with the remaining duration at every tick
	// boundary until total elapses, then invokes onExpire exactly once.
	Countdown(total, tick time.Duration, onTick func(remaining time.Duration), onExpire func()) Handle
}

// Real is the production Scheduler backed by runtime timers. Each handle
// owns its own timer; there is no shared timer state.
type Real struct{}

// Now returns the current wall time. Go timestamps carry a monotonic
// reading, so subtractions are jump-free.
func (Real) Now() time.Time { return time.Now() }

// AfterFunc schedules fn on its own timer.
func (Real) AfterFunc(d time.Duration, fn func()) Handle {
	return &timerHandle{t: time.AfterFunc(d, fn)}
}

type timerHandle struct {
	t *time.Timer
}

func (h *timerHandle) Cancel() {
	h.t.Stop()
}

// Countdown runs a ticker goroutine that reports the remaining duration
// until the total elapses. Remaining time is measured against the
// deadline rather than accumulated per tick, so delayed ticks cannot
// drift it away from the expiry timer.
func (Real) Countdown(total, tick time.Duration, onTick func(time.Duration), onExpire func()) Handle {
	h := &countdownHandle{done: make(chan struct{})}
	deadline := time.Now().Add(total)

	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		expire := time.NewTimer(total)
		defer expire.Stop()

		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				if remaining := time.Until(deadline); remaining > 0 {
					onTick(remaining)
				}
			case <-expire.C:
				h.Cancel()
				onExpire()
				return
			}
		}
	}()

	return h
}

type countdownHandle struct {
	once sync.Once
	done chan struct{}
}

func (h *countdownHandle) Cancel() {
	h.once.Do(func() { close(h.done) })
}
