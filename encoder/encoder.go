package encoder

import (
	"fmt"
	"time"
)

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder accumulates S16 mono blocks into a single encoded clip. EncodeBlock
// is called from one goroutine; Bytes is only valid after Close.
type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	Format() string
	TotalFrames() uint64
	AddEncodeTime(d time.Duration)
	EncodeTime() time.Duration
}

// New returns the encoder for a configured clip format.
func New(format string) (Encoder, error) {
	switch format {
	case "wav":
		return NewWav(), nil
	case "flac":
		return NewFlac()
	default:
		return nil, fmt.Errorf("unknown clip format %q (use wav or flac)", format)
	}
}
