//go:build !linux

package gesture

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

// xSource bridges golang.design/x/hotkey into the raw-event contract. The OS
// only reports the registered combination as a whole, so each Keydown/Keyup
// pair is synthesized into a press/release of the combination's main key with
// the full modifier set attached.
type xSource struct {
	events chan KeyEvent

	mu     sync.Mutex
	hk     *hotkey.Hotkey
	combo  Combo
	cancel chan struct{}
	closed bool
}

func NewSource() (Source, error) {
	return &xSource{events: make(chan KeyEvent, 8)}, nil
}

func (s *xSource) Events() <-chan KeyEvent { return s.events }

func (s *xSource) Subscribe(combo Combo) error {
	mods, key, err := translate(combo)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("source closed")
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("registering hotkey: %w", err)
	}
	if s.hk != nil {
		close(s.cancel)
		s.hk.Unregister()
	}
	s.hk = hk
	s.combo = combo
	s.cancel = make(chan struct{})

	go s.forward(hk, combo, s.cancel)
	return nil
}

func (s *xSource) forward(hk *hotkey.Hotkey, combo Combo, cancel chan struct{}) {
	for {
		select {
		case <-cancel:
			return
		case <-hk.Keydown():
			s.emit(KeyEvent{Code: combo.Key, Mods: combo.Mods, Edge: EdgePress}, cancel)
		case <-hk.Keyup():
			s.emit(KeyEvent{Code: combo.Key, Mods: combo.Mods, Edge: EdgeRelease}, cancel)
		}
	}
}

func (s *xSource) emit(ev KeyEvent, cancel chan struct{}) {
	select {
	case s.events <- ev:
	case <-cancel:
	}
}

func (s *xSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.hk != nil {
		close(s.cancel)
		s.hk.Unregister()
		s.hk = nil
	}
}

func translate(c Combo) ([]hotkey.Modifier, hotkey.Key, error) {
	mods := platformMods(c.Mods)
	key, ok := platformKeys[c.Key]
	if !ok {
		return nil, 0, fmt.Errorf("key %s not supported on this platform", keyName(c.Key))
	}
	return mods, key, nil
}

func Diagnose() (string, error) {
	return "global hotkey support available", nil
}
