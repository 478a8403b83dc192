package clock

import (
	"sync"
	"testing"
	"time"
)

func TestRealCountdownRemainingTracksDeadline(t *testing.T) {
	var mu sync.Mutex
	var ticks []time.Duration
	done := make(chan struct{})

	total := 300 * time.Millisecond
	Real{}.Countdown(total, 50*time.Millisecond,
		func(remaining time.Duration) {
			mu.Lock()
			ticks = append(ticks, remaining)
			mu.Unlock()
		},
		func() { close(done) },
	)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Countdown did not expire")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(ticks) == 0 {
		t.Fatal("Expected at least one tick before expiry")
	}
	for i, r := range ticks {
		if r <= 0 || r >= total {
			t.Errorf("Tick %d: remaining %v outside (0, %v)", i, r, total)
		}
		if i > 0 && r >= ticks[i-1] {
			t.Errorf("Remaining did not decrease: %v then %v", ticks[i-1], r)
		}
	}
}
