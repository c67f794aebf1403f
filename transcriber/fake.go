package transcriber

import (
	"context"
	"sync"

	"murmur/audio"
)

// Fake is a scripted Provider for tests. Each call returns the next queued
// response, repeating the last one when the queue runs out.
type Fake struct {
	mu        sync.Mutex
	responses []FakeResponse
	calls     int
	lastLang  string
	lastKey   string
	block     chan struct{}
}

type FakeResponse struct {
	Text string
	Err  error
}

func NewFake(responses ...FakeResponse) *Fake {
	return &Fake{responses: responses}
}

func (f *Fake) Name() string { return "fake" }

// Block makes subsequent calls wait until Release, for tests that need a
// transcription in flight.
func (f *Fake) Block() {
	f.mu.Lock()
	f.block = make(chan struct{})
	f.mu.Unlock()
}

func (f *Fake) Release() {
	f.mu.Lock()
	if f.block != nil {
		close(f.block)
		f.block = nil
	}
	f.mu.Unlock()
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) LastLanguage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLang
}

func (f *Fake) LastKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastKey
}

func (f *Fake) Transcribe(ctx context.Context, _ audio.Clip, lang, apiKey string) (*Result, error) {
	f.mu.Lock()
	idx := f.calls
	f.calls++
	f.lastLang = lang
	f.lastKey = apiKey
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if len(f.responses) == 0 {
		return &Result{}, nil
	}
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	r := f.responses[idx]
	if r.Err != nil {
		return nil, r.Err
	}
	return &Result{Text: r.Text}, nil
}
