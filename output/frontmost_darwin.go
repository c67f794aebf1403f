//go:build darwin

package output

import (
	"fmt"
	"os/exec"
	"strings"
)

// SystemFocus tracks the frontmost application through System Events.
type SystemFocus struct{}

func NewFrontmost() *SystemFocus { return &SystemFocus{} }

func (SystemFocus) Capture() AppID {
	out, err := exec.Command("osascript", "-e",
		`tell application "System Events" to get bundle identifier of first application process whose frontmost is true`).Output()
	if err != nil {
		return ""
	}
	return AppID(strings.TrimSpace(string(out)))
}

func (SystemFocus) Activate(id AppID) error {
	if id == "" {
		return nil
	}
	if !validBundleID(string(id)) {
		return fmt.Errorf("refusing to activate suspect bundle id %q", id)
	}
	script := fmt.Sprintf(`tell application id "%s" to activate`, id)
	return exec.Command("osascript", "-e", script).Run()
}

// validBundleID rejects anything that could escape the AppleScript string.
func validBundleID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-':
		default:
			return false
		}
	}
	return true
}
