package share

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/perceptlab/brain-trainer-go/internal/engine"
	"github.com/perceptlab/brain-trainer-go/internal/games"
)

func TestTextPerGame(t *testing.T) {
	cases := []struct {
		name string
		snap engine.Snapshot
		want string
	}{
		{
			name: "reaction with latency",
			snap: engine.Snapshot{Game: "reaction", LastVerdict: &games.Verdict{LatencyMS: 234.56}},
			want: "My reaction time is 234.56 ms!",
		},
		{
			name: "reaction without a run",
			snap: engine.Snapshot{Game: "reaction"},
			want: "How fast are your reflexes?",
		},
		{
			name: "sequence score",
			snap: engine.Snapshot{Game: "sequence", Score: 7},
			want: "I scored 7 on the Number Sequence Test!",
		},
		{
			name: "aim hits and misses",
			snap: engine.Snapshot{Game: "aim", Score: 12, Attempts: 15},
			want: "12 hits and 3 misses",
		},
		{
			name: "typing wpm and accuracy",
			snap: engine.Snapshot{Game: "typing", LastVerdict: &games.Verdict{WPM: 72, Accuracy: 98}},
			want: "I typed at 72 WPM with 98% accuracy!",
		},
		{
			name: "plates tally",
			snap: engine.Snapshot{Game: "plates", Score: 5, Attempts: 6},
			want: "I scored 5 out of 6",
		},
		{
			name: "memory moves",
			snap: engine.Snapshot{Game: "memory", Attempts: 14},
			want: "in 14 moves",
		},
		{
			name: "unknown game falls back to level and score",
			snap: engine.Snapshot{Game: "mystery", Level: 3, Score: 9},
			want: "I reached level 3 with a score of 9!",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			title, text := Text(tc.snap)
			if title == "" {
				t.Error("Expected a non-empty title")
			}
			if !strings.Contains(text, tc.want) {
				t.Errorf("Expected text to contain %q, got %q", tc.want, text)
			}
		})
	}
}

type fakeSharer struct {
	err    error
	called bool
}

func (f *fakeSharer) Share(ctx context.Context, title, text, url string) error {
	f.called = true
	return f.err
}

func TestDeliver(t *testing.T) {
	snap := engine.Snapshot{Game: "sequence", Score: 4}

	t.Run("successful share", func(t *testing.T) {
		s := &fakeSharer{}
		if fallback := Deliver(context.Background(), s, snap, "https://example.com"); fallback != "" {
			t.Errorf("Expected no fallback on success, got %q", fallback)
		}
		if !s.called {
			t.Error("Expected the sharer to be invoked")
		}
	})

	t.Run("failed share falls back to the link", func(t *testing.T) {
		s := &fakeSharer{err: errors.New("no share sheet")}
		fallback := Deliver(context.Background(), s, snap, "https://example.com")
		if !strings.Contains(fallback, "https://example.com") {
			t.Errorf("Expected the link in the fallback, got %q", fallback)
		}
	})

	t.Run("nil sharer falls back to the link", func(t *testing.T) {
		fallback := Deliver(context.Background(), nil, snap, "https://example.com")
		if !strings.Contains(fallback, "Sharing not supported") {
			t.Errorf("Expected the unsupported notice, got %q", fallback)
		}
	})
}
