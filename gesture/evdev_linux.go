//go:build linux

package gesture

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const inputEventSize = 24

const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
	keyRepeat  = 2
)

// evdevSource reads every keyboard under /dev/input and republishes key
// transitions with the running modifier bitmask attached. It sees the whole
// key stream, so Subscribe has nothing to register.
type evdevSource struct {
	events chan KeyEvent
	files  []*os.File
	stop   chan struct{}
	once   sync.Once

	mu   sync.Mutex
	held Modifier
}

func NewSource() (Source, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return nil, fmt.Errorf("scanning input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return nil, fmt.Errorf("no keyboard devices found (is the user in the 'input' group?)")
	}

	s := &evdevSource{
		events: make(chan KeyEvent, 64),
		stop:   make(chan struct{}),
	}
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		s.files = append(s.files, f)
		go s.readEvents(f)
	}
	if len(s.files) == 0 {
		return nil, fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}
	return s, nil
}

func (s *evdevSource) Subscribe(Combo) error   { return nil }
func (s *evdevSource) Events() <-chan KeyEvent { return s.events }

func (s *evdevSource) Close() {
	s.once.Do(func() {
		close(s.stop)
		for _, f := range s.files {
			f.Close()
		}
	})
}

func (s *evdevSource) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey || evValue == keyRepeat {
				continue
			}

			s.mu.Lock()
			if m := modifierFor(evCode); m != 0 {
				if evValue == keyPress {
					s.held |= m
				} else {
					s.held &^= m
				}
			}
			ev := KeyEvent{Code: evCode, Mods: s.held, Edge: EdgeRelease}
			if evValue == keyPress {
				ev.Edge = EdgePress
			}
			s.mu.Unlock()

			select {
			case s.events <- ev:
			case <-s.stop:
				return
			}
		}
	}
}

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}
	var keyboards []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(data))) > 10
}

// Diagnose reports whether any keyboard device is readable.
func Diagnose() (string, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is the user in the 'input' group?)")
	}
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), path), nil
		}
	}
	return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
}
