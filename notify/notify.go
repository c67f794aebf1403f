// Package notify raises a desktop toast for failures that matter even when
// the terminal is not visible.
package notify

import (
	"github.com/gen2brain/beeep"

	"murmur/mlog"
)

var disabled bool

func Disable() { disabled = true }

// Error shows a toast with the given message. Best effort: a missing
// notification daemon only produces a log line.
func Error(message string) {
	if disabled {
		return
	}
	go func() {
		if err := beeep.Notify("murmur", message, ""); err != nil {
			mlog.Warnf("notification: %v", err)
		}
	}()
}
