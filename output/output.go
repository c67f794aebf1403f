// Package output places finished transcripts where the user is typing: into
// the clipboard, and optionally pasted into the app that was focused when
// the gesture started.
package output

import (
	"fmt"
	"time"

	cb "github.com/atotto/clipboard"

	"murmur/mlog"
)

// AppID identifies the application focused at gesture start. Empty means
// "paste wherever focus is now".
type AppID string

// Sink delivers one transcript. Implementations must be safe to call from
// the pipeline goroutine.
type Sink interface {
	Deliver(text string, origin AppID) error
}

// Frontmost captures and restores application focus around a paste.
type Frontmost interface {
	Capture() AppID
	Activate(id AppID) error
}

// restoreDelay is how long the transcript stays on the clipboard before the
// previous contents come back. Long enough for the paste keystroke to land.
const restoreDelay = 600 * time.Millisecond

// Desktop copies the transcript, refocuses the origin app, synthesizes the
// paste keystroke and then restores whatever was on the clipboard before.
// With AutoPaste off it only copies, and leaves the clipboard alone.
type Desktop struct {
	AutoPaste bool
	Focus     Frontmost

	// overridable in tests
	read  func() (string, error)
	write func(string) error
	paste func() error
}

func NewDesktop(autoPaste bool, focus Frontmost) *Desktop {
	return &Desktop{
		AutoPaste: autoPaste,
		Focus:     focus,
		read:      cb.ReadAll,
		write:     cb.WriteAll,
		paste:     pasteKeystroke,
	}
}

func (d *Desktop) Deliver(text string, origin AppID) error {
	if !d.AutoPaste {
		if err := d.write(text); err != nil {
			return fmt.Errorf("clipboard write: %w", err)
		}
		return nil
	}

	saved, readErr := d.read()
	if readErr != nil {
		// Nothing to restore; keep going, the paste still matters.
		mlog.Warnf("clipboard read before paste: %v", readErr)
	}

	if err := d.write(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}

	if origin != "" && d.Focus != nil {
		if err := d.Focus.Activate(origin); err != nil {
			mlog.Warnf("refocus %q: %v", origin, err)
		}
	}

	if err := d.paste(); err != nil {
		return fmt.Errorf("paste keystroke: %w", err)
	}

	if readErr == nil {
		go func() {
			time.Sleep(restoreDelay)
			if err := d.write(saved); err != nil {
				mlog.Warnf("clipboard restore: %v", err)
			}
		}()
	}
	return nil
}
