package clock

import (
	"sync"
	"time"
)

// Manual is a Scheduler whose time only moves when the test calls
// Advance. Scheduled callbacks fire synchronously, in timestamp order,
// as the clock passes their deadlines.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	events []*manualEvent
}

type manualEvent struct {
	at  time.Time
	seq int // creation order breaks ties between equal deadlines
	fn  func()
	h   *manualHandle
}

type manualHandle struct {
	mu        sync.Mutex
	cancelled bool
}

func (h *manualHandle) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()
}

func (h *manualHandle) isCancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// NewManual creates a manual scheduler starting at the given instant.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the manual clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules fn to fire when the clock advances past d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := &manualHandle{}
	m.push(&manualEvent{at: m.now.Add(d), fn: fn, h: h})
	return h
}

// Countdown schedules every tick plus the final expiry up front. All
// events share one handle, so a single Cancel silences the whole
// countdown. A tick that lands exactly on the expiry is skipped in
// favour of onExpire.
func (m *Manual) Countdown(total, tick time.Duration, onTick func(time.Duration), onExpire func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := &manualHandle{}
	expireAt := m.now.Add(total)

	for at := m.now.Add(tick); at.Before(expireAt); at = at.Add(tick) {
		remaining := expireAt.Sub(at)
		m.push(&manualEvent{at: at, fn: func() { onTick(remaining) }, h: h})
	}
	m.push(&manualEvent{at: expireAt, fn: onExpire, h: h})
	return h
}

// Advance moves the clock forward by d, firing every due callback in
// deadline order. Callbacks run without the scheduler lock held, so they
// may schedule or cancel further work on the same clock.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)

	for {
		ev := m.popDue(target)
		if ev == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		if ev.at.After(m.now) {
			m.now = ev.at
		}
		m.mu.Unlock()

		if !ev.h.isCancelled() {
			ev.fn()
		}
		m.mu.Lock()
	}
}

func (m *Manual) push(ev *manualEvent) {
	ev.seq = m.seq
	m.seq++
	m.events = append(m.events, ev)
}

// popDue removes and returns the earliest pending event at or before
// target, or nil when none remain.
func (m *Manual) popDue(target time.Time) *manualEvent {
	best := -1
	for i, ev := range m.events {
		if ev.at.After(target) {
			continue
		}
		if best == -1 || ev.at.Before(m.events[best].at) ||
			(ev.at.Equal(m.events[best].at) && ev.seq < m.events[best].seq) {
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	ev := m.events[best]
	m.events = append(m.events[:best], m.events[best+1:]...)
	return ev
}

// Pending reports how many scheduled events have not fired or been
// cancelled yet. Useful for asserting that reset tore everything down.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, ev := range m.events {
		if !ev.h.isCancelled() {
			n++
		}
	}
	return n
}
