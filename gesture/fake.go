package gesture

import "sync"

// FakeSource drives the tracker from tests. Press/Release maintain the
// modifier bitmask the way a real backend would.
type FakeSource struct {
	events chan KeyEvent

	mu     sync.Mutex
	held   Modifier
	combos []Combo // Subscribe history, for assertions
}

func NewFakeSource() *FakeSource {
	return &FakeSource{events: make(chan KeyEvent, 64)}
}

func (f *FakeSource) Subscribe(c Combo) error {
	f.mu.Lock()
	f.combos = append(f.combos, c)
	f.mu.Unlock()
	return nil
}

func (f *FakeSource) Events() <-chan KeyEvent { return f.events }

func (f *FakeSource) Close() {}

func (f *FakeSource) Press(code uint16) {
	f.mu.Lock()
	f.held |= modifierFor(code)
	ev := KeyEvent{Code: code, Mods: f.held, Edge: EdgePress}
	f.mu.Unlock()
	f.events <- ev
}

func (f *FakeSource) Release(code uint16) {
	f.mu.Lock()
	f.held &^= modifierFor(code)
	ev := KeyEvent{Code: code, Mods: f.held, Edge: EdgeRelease}
	f.mu.Unlock()
	f.events <- ev
}

func (f *FakeSource) Subscriptions() []Combo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Combo(nil), f.combos...)
}
