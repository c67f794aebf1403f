//go:build windows

package output

// SystemFocus is a no-op on Windows: the paste keystroke goes to whichever
// window holds focus, and push-to-talk rarely moves it.
type SystemFocus struct{}

func NewFrontmost() *SystemFocus { return &SystemFocus{} }

func (SystemFocus) Capture() AppID { return "" }

func (SystemFocus) Activate(AppID) error { return nil }
