package output

import "sync"

// FakeSink records deliveries for tests.
type FakeSink struct {
	mu         sync.Mutex
	err        error
	deliveries []Delivery
}

type Delivery struct {
	Text   string
	Origin AppID
}

func NewFakeSink() *FakeSink { return &FakeSink{} }

// Fail makes every Deliver return the given error.
func (f *FakeSink) Fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *FakeSink) Deliver(text string, origin AppID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deliveries = append(f.deliveries, Delivery{Text: text, Origin: origin})
	return nil
}

func (f *FakeSink) Deliveries() []Delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Delivery, len(f.deliveries))
	copy(out, f.deliveries)
	return out
}

// FakeFrontmost returns a fixed origin and records activations.
type FakeFrontmost struct {
	mu          sync.Mutex
	Current     AppID
	activations []AppID
}

func (f *FakeFrontmost) Capture() AppID { return f.Current }

func (f *FakeFrontmost) Activate(id AppID) error {
	f.mu.Lock()
	f.activations = append(f.activations, id)
	f.mu.Unlock()
	return nil
}

func (f *FakeFrontmost) Activations() []AppID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]AppID, len(f.activations))
	copy(out, f.activations)
	return out
}
