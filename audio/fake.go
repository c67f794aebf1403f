package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"murmur/encoder"
)

const fakeBlockFrames = 1024

// FakeContext replays synthetic PCM to whoever opens a capture device.
type FakeContext struct {
	pcm      []int16
	startErr error
}

// NewFakeContext captures from a fixed sample buffer.
func NewFakeContext(pcm []int16) *FakeContext {
	return &FakeContext{pcm: pcm}
}

// NewFakeToneContext synthesizes a sine tone of the given duration, which is
// enough signal for level metering and length checks.
func NewFakeToneContext(freq float64, seconds float64) *FakeContext {
	n := int(float64(encoder.SampleRate) * seconds)
	pcm := make([]int16, n)
	for i := range pcm {
		t := float64(i) / float64(encoder.SampleRate)
		pcm[i] = int16(math.Sin(2*math.Pi*freq*t) * 16000)
	}
	return &FakeContext{pcm: pcm}
}

// FailStart makes every capture device fail on Start with the given error.
func (f *FakeContext) FailStart(err error) { f.startErr = err }

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake0", Name: "fake"}}, nil
}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{pcm: f.pcm, startErr: f.startErr}, nil
}

func (f *FakeContext) Close() {}

type FakeCapture struct {
	pcm      []int16
	startErr error

	mu      sync.Mutex
	cb      DataCallback
	started bool
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

// Start delivers the whole buffer synchronously in fixed blocks. Tests that
// need pacing can feed additional blocks through Feed.
func (f *FakeCapture) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.mu.Lock()
	f.started = true
	f.mu.Unlock()
	for pos := 0; pos < len(f.pcm); pos += fakeBlockFrames {
		end := min(pos+fakeBlockFrames, len(f.pcm))
		f.Feed(f.pcm[pos:end])
	}
	return nil
}

// Feed pushes one block of samples through the callback, as the device
// thread would.
func (f *FakeCapture) Feed(block []int16) {
	f.mu.Lock()
	cb := f.cb
	started := f.started
	f.mu.Unlock()
	if cb == nil || !started || len(block) == 0 {
		return
	}
	data := make([]byte, len(block)*2)
	for i, s := range block {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	cb(data, uint32(len(block)))
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	f.started = false
	f.mu.Unlock()
}

func (f *FakeCapture) Close() {}
