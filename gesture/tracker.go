package gesture

import (
	"sync"
	"sync/atomic"

	"murmur/mlog"
)

// Tracker turns raw key transitions into Start/Stop intents for the
// configured combination. It emits exactly one Start when the full
// combination becomes held and exactly one Stop when any required key of
// that combination is released, then re-arms. A Start is never emitted
// twice without an intervening Stop.
type Tracker struct {
	src     Source
	combo   atomic.Pointer[Combo]
	intents chan Intent

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewTracker(src Source, combo Combo) (*Tracker, error) {
	t := &Tracker{
		src:     src,
		intents: make(chan Intent, 8),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	t.combo.Store(&combo)
	if err := src.Subscribe(combo); err != nil {
		return nil, err
	}
	go t.run()
	return t, nil
}

func (t *Tracker) Intents() <-chan Intent { return t.intents }

// SetCombo swaps the target combination. The swap is atomic: events already
// consumed keep their verdict, the next event evaluates the new combination.
// An armed gesture stays armed against the combination that started it.
func (t *Tracker) SetCombo(c Combo) error {
	if err := t.src.Subscribe(c); err != nil {
		return err
	}
	t.combo.Store(&c)
	return nil
}

func (t *Tracker) Combo() Combo { return *t.combo.Load() }

func (t *Tracker) Close() {
	t.stopOnce.Do(func() { close(t.stop) })
	t.src.Close()
	<-t.done
}

func (t *Tracker) run() {
	defer close(t.done)

	var armed bool
	var held Combo // combination the open gesture was armed against

	for {
		select {
		case <-t.stop:
			return
		case ev, ok := <-t.src.Events():
			if !ok {
				return
			}
			switch ev.Edge {
			case EdgePress:
				c := *t.combo.Load()
				if armed || ev.Code != c.Key || ev.Mods&c.Mods != c.Mods {
					continue
				}
				armed = true
				held = c
				// Start may be dropped if the consumer is wedged; the
				// matching release still disarms below.
				select {
				case t.intents <- IntentStart:
				default:
					armed = false
					mlog.Warnf("start intent dropped, consumer not draining")
				}
			case EdgeRelease:
				if !armed {
					continue
				}
				if ev.Code != held.Key && modifierFor(ev.Code)&held.Mods == 0 {
					continue
				}
				armed = false
				select {
				case t.intents <- IntentStop:
				case <-t.stop:
					return
				}
			}
		}
	}
}
