// Package share formats a finished session into share text and hands
// it to a platform share facility. It sits outside the trial engine and
// only ever sees the final snapshot.
package share

import (
	"context"
	"fmt"

	"github.com/perceptlab/brain-trainer-go/internal/engine"
)

// Sharer is the platform share facility (native share sheet, clipboard
// bridge, bot message, ...). A nil Sharer means sharing is unavailable.
type Sharer interface {
	Share(ctx context.Context, title, text, url string) error
}

// Text builds the per-game share title and message from the final
// snapshot.
func Text(snap engine.Snapshot) (title, text string) {
	switch snap.Game {
	case "reaction":
		title = "Reaction Time Test"
		text = "Challenge your friends! How fast are your reflexes?"
		if v := snap.LastVerdict; v != nil && v.LatencyMS > 0 {
			text = fmt.Sprintf("My reaction time is %.2f ms! Can you beat me?", v.LatencyMS)
		}
	case "sequence":
		title = "Number Sequence Test"
		text = fmt.Sprintf("I scored %d on the Number Sequence Test! Can you beat me?", snap.Score)
	case "colorgrid":
		title = "Color Perception Test"
		text = fmt.Sprintf("I scored %d on the Color Perception Test! Can you beat me?", snap.Score)
	case "shapes":
		title = "Shape Recognition Test"
		text = fmt.Sprintf("I scored %d on the Shape Recognition Test! Can you beat me?", snap.Score)
	case "aim":
		misses := snap.Attempts - snap.Score
		title = "Aim Trainer Test"
		text = fmt.Sprintf("I scored %d points in Aim Trainer with %d hits and %d misses! Can you beat me?",
			snap.Score, snap.Score, misses)
	case "typing":
		title = "Typing Speed Test"
		wpm, accuracy := 0, 0.0
		if v := snap.LastVerdict; v != nil {
			wpm, accuracy = v.WPM, v.Accuracy
		}
		text = fmt.Sprintf("I typed at %d WPM with %.0f%% accuracy! Can you beat me?", wpm, accuracy)
	case "plates":
		title = "Color Blindness Test"
		text = fmt.Sprintf("I scored %d out of %d on the Color Blindness Test! Can you do better?",
			snap.Score, snap.Attempts)
	case "memory":
		title = "Memory Match Test"
		text = fmt.Sprintf("I completed the Memory Match game in %d moves! Can you beat my score?", snap.Attempts)
	default:
		title = "Brain Trainer"
		text = fmt.Sprintf("I reached level %d with a score of %d! Can you beat me?", snap.Level, snap.Score)
	}
	return title, text
}

// Deliver shares the snapshot through the platform facility. When no
// sharer is available, or the share fails, it returns the manual
// copy-link message instead; an empty fallback means the share went
// out.
func Deliver(ctx context.Context, sharer Sharer, snap engine.Snapshot, url string) (fallback string) {
	title, text := Text(snap)
	if sharer != nil {
		if err := sharer.Share(ctx, title, text, url); err == nil {
			return ""
		}
	}
	return fmt.Sprintf("Share this link to challenge your friends: %s\n\n(Sharing not supported here.)", url)
}
