package pipeline

import (
	"sync"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"murmur/encoder"
)

const (
	vadMode       = 3
	vadFrameMs    = 20
	vadFrameBytes = encoder.SampleRate * vadFrameMs / 1000 * 2 // 640 bytes
)

// speechThreshold: fraction of VAD frames in a tick that must be speech for
// the tick to count as "speaking".
const speechThreshold = 0.10

// vadProcessor feeds raw PCM into webrtcvad in fixed 20ms frames and
// answers, per tick, whether the user was audibly speaking.
type vadProcessor struct {
	vad *webrtcvad.VAD

	mu           sync.Mutex
	buf          []byte
	totalFrames  int
	speechFrames int
	tickTotal    int
	tickSpeech   int
}

func newVADProcessor() (*vadProcessor, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(vadMode); err != nil {
		return nil, err
	}
	return &vadProcessor{vad: v}, nil
}

// Process runs on the audio tap; it buffers partial frames and never blocks
// beyond the mutex.
func (p *vadProcessor) Process(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf = append(p.buf, data...)
	for len(p.buf) >= vadFrameBytes {
		frame := p.buf[:vadFrameBytes]
		p.buf = p.buf[vadFrameBytes:]

		active, err := p.vad.Process(encoder.SampleRate, frame)
		if err != nil {
			continue
		}
		p.totalFrames++
		if active {
			p.speechFrames++
		}
	}
}

// HasSpeechTick reports whether speech dominated since the previous call.
func (p *vadProcessor) HasSpeechTick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.totalFrames - p.tickTotal
	s := p.speechFrames - p.tickSpeech
	p.tickTotal, p.tickSpeech = p.totalFrames, p.speechFrames
	if t == 0 {
		return false
	}
	return float64(s)/float64(t) >= speechThreshold
}

func (p *vadProcessor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = p.buf[:0]
	p.totalFrames = 0
	p.speechFrames = 0
	p.tickTotal = 0
	p.tickSpeech = 0
}
