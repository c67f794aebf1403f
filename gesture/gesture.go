package gesture

import (
	"fmt"
	"strings"
)

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModSuper
)

type Edge uint8

const (
	EdgePress Edge = iota
	EdgeRelease
)

// KeyEvent is one raw key transition from the OS input layer.
// Mods reflects the modifier set held after the transition applied.
type KeyEvent struct {
	Code uint16
	Mods Modifier
	Edge Edge
}

// Combo is the configured press-hold-release combination.
type Combo struct {
	Mods Modifier
	Key  uint16
}

func (c Combo) String() string {
	var parts []string
	if c.Mods&ModCtrl != 0 {
		parts = append(parts, "ctrl")
	}
	if c.Mods&ModShift != 0 {
		parts = append(parts, "shift")
	}
	if c.Mods&ModAlt != 0 {
		parts = append(parts, "alt")
	}
	if c.Mods&ModSuper != 0 {
		parts = append(parts, "super")
	}
	parts = append(parts, keyName(c.Key))
	return strings.Join(parts, "+")
}

type Intent uint8

const (
	IntentStart Intent = iota
	IntentStop
)

// Source delivers raw key transitions. Subscribe tells platform backends
// which combination must be observable; backends that see the whole key
// stream treat it as a no-op.
type Source interface {
	Subscribe(combo Combo) error
	Events() <-chan KeyEvent
	Close()
}

// Keycodes follow the linux input-event-codes values on every platform;
// non-linux sources translate on the way in.
const (
	KeyLeftCtrl   uint16 = 29
	KeyRightCtrl  uint16 = 97
	KeyLeftShift  uint16 = 42
	KeyRightShift uint16 = 54
	KeyLeftAlt    uint16 = 56
	KeyRightAlt   uint16 = 100
	KeyLeftMeta   uint16 = 125
	KeyRightMeta  uint16 = 126
	KeySpace      uint16 = 57
	KeyEnter      uint16 = 28
	KeyTab        uint16 = 15
)

// modifierFor maps a modifier keycode to its bitmask bit, 0 for ordinary keys.
func modifierFor(code uint16) Modifier {
	switch code {
	case KeyLeftCtrl, KeyRightCtrl:
		return ModCtrl
	case KeyLeftShift, KeyRightShift:
		return ModShift
	case KeyLeftAlt, KeyRightAlt:
		return ModAlt
	case KeyLeftMeta, KeyRightMeta:
		return ModSuper
	}
	return 0
}

// a=30 ... z=44 in evdev order.
var letterCodes = [26]uint16{
	30, 48, 46, 32, 18, 33, 34, 35, 23, 36,
	37, 38, 50, 49, 24, 25, 16, 19, 31, 20,
	22, 47, 17, 45, 21, 44,
}

var digitCodes = [10]uint16{11, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// ParseCombo builds a Combo from the textual form stored in settings,
// e.g. modifiers ["ctrl","shift"] and key "space".
func ParseCombo(modifiers []string, key string) (Combo, error) {
	var c Combo
	for _, m := range modifiers {
		switch strings.ToLower(m) {
		case "ctrl", "control":
			c.Mods |= ModCtrl
		case "shift":
			c.Mods |= ModShift
		case "alt", "option":
			c.Mods |= ModAlt
		case "super", "cmd", "command", "meta", "win":
			c.Mods |= ModSuper
		default:
			return Combo{}, fmt.Errorf("unknown modifier %q", m)
		}
	}

	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case k == "space":
		c.Key = KeySpace
	case k == "enter", k == "return":
		c.Key = KeyEnter
	case k == "tab":
		c.Key = KeyTab
	case len(k) == 1 && k[0] >= 'a' && k[0] <= 'z':
		c.Key = letterCodes[k[0]-'a']
	case len(k) == 1 && k[0] >= '0' && k[0] <= '9':
		c.Key = digitCodes[k[0]-'0']
	default:
		return Combo{}, fmt.Errorf("unknown key %q", key)
	}
	if c.Mods == 0 {
		return Combo{}, fmt.Errorf("combination needs at least one modifier")
	}
	return c, nil
}

func keyName(code uint16) string {
	switch code {
	case KeySpace:
		return "space"
	case KeyEnter:
		return "enter"
	case KeyTab:
		return "tab"
	}
	for i, c := range letterCodes {
		if c == code {
			return string(rune('a' + i))
		}
	}
	for i, c := range digitCodes {
		if c == code {
			return string(rune('0' + i))
		}
	}
	return fmt.Sprintf("key%d", code)
}
