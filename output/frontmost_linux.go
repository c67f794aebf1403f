//go:build linux

package output

import (
	"os/exec"
	"strconv"
	"strings"
)

// SystemFocus remembers the active X11 window via xdotool. On Wayland the
// commands fail and Capture returns empty, which degrades to pasting
// wherever focus happens to be.
type SystemFocus struct{}

func NewFrontmost() *SystemFocus { return &SystemFocus{} }

func (SystemFocus) Capture() AppID {
	out, err := exec.Command("xdotool", "getactivewindow").Output()
	if err != nil {
		return ""
	}
	return AppID(strings.TrimSpace(string(out)))
}

func (SystemFocus) Activate(id AppID) error {
	if id == "" {
		return nil
	}
	if _, err := strconv.ParseUint(string(id), 10, 64); err != nil {
		return err
	}
	return exec.Command("xdotool", "windowactivate", "--sync", string(id)).Run()
}
