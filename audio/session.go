package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"murmur/encoder"
)

var (
	ErrDeviceUnavailable = errors.New("audio: capture device unavailable")
	ErrAlreadyRecording  = errors.New("audio: another capture session is open")
)

// sessionOpen enforces the one-open-session-per-process rule.
var sessionOpen atomic.Bool

// LevelFunc receives one bounded [0,1] RMS value per PCM block. Called on the
// capture path; implementations must not block.
type LevelFunc func(rms float64)

type SessionConfig struct {
	Encoder encoder.Encoder
	OnLevel LevelFunc          // optional
	OnPCM   func(block []byte) // optional raw tap (e.g. voice detection); must not block
}

// Session owns one exclusive microphone stream. Samples are split into fixed
// blocks and encoded concurrently while the recording is still running, so
// Close only has to flush the tail.
type Session struct {
	dev CaptureDevice
	cfg SessionConfig

	bufMu     sync.Mutex
	sampleBuf []int16
	stopped   bool

	blockChan  chan []int16
	encodeDone chan struct{}

	closeOnce sync.Once
	clip      Clip
	closeErr  error
	encodeErr atomic.Value // error from the encode goroutine, if any
}

// Open acquires the device and starts capturing. It fails with
// ErrAlreadyRecording if another session is open anywhere in the process and
// ErrDeviceUnavailable if the device cannot be started.
func Open(dev CaptureDevice, cfg SessionConfig) (*Session, error) {
	if cfg.Encoder == nil {
		return nil, errors.New("audio: session needs an encoder")
	}
	if !sessionOpen.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRecording
	}

	s := &Session{
		dev:        dev,
		cfg:        cfg,
		blockChan:  make(chan []int16, 64),
		encodeDone: make(chan struct{}),
	}

	go func() {
		defer close(s.encodeDone)
		defer func() {
			if r := recover(); r != nil {
				s.encodeErr.Store(fmt.Errorf("audio: encoder panic: %v", r))
				for range s.blockChan {
				}
			}
		}()
		for block := range s.blockChan {
			start := time.Now()
			s.cfg.Encoder.EncodeBlock(block)
			s.cfg.Encoder.AddEncodeTime(time.Since(start))
		}
	}()

	dev.SetCallback(s.onData)
	if err := dev.Start(); err != nil {
		dev.ClearCallback()
		close(s.blockChan)
		<-s.encodeDone
		sessionOpen.Store(false)
		return nil, errors.Join(ErrDeviceUnavailable, err)
	}
	return s, nil
}

// onData runs on the capture thread: accumulate, meter, tap. The block
// handoff is a buffered channel send; encoding happens elsewhere.
func (s *Session) onData(data []byte, _ uint32) {
	s.bufMu.Lock()
	if s.stopped {
		s.bufMu.Unlock()
		return
	}
	for i := 0; i+1 < len(data); i += 2 {
		s.sampleBuf = append(s.sampleBuf, int16(binary.LittleEndian.Uint16(data[i:])))
	}
	var blocks [][]int16
	for len(s.sampleBuf) >= encoder.BlockSize {
		block := make([]int16, encoder.BlockSize)
		copy(block, s.sampleBuf[:encoder.BlockSize])
		s.sampleBuf = s.sampleBuf[encoder.BlockSize:]
		blocks = append(blocks, block)
	}
	s.bufMu.Unlock()

	for _, block := range blocks {
		select {
		case s.blockChan <- block:
		default: // encoder hopelessly behind; drop rather than stall capture
		}
	}

	if s.cfg.OnLevel != nil && len(data) > 1 {
		s.cfg.OnLevel(blockRMS(data))
	}
	if s.cfg.OnPCM != nil && len(data) > 0 {
		s.cfg.OnPCM(data)
	}
}

// Close stops the stream and returns the finalized clip. It is idempotent
// and safe on a nil Session, returning an empty clip.
func (s *Session) Close() (Clip, error) {
	if s == nil {
		return Clip{Rate: encoder.SampleRate}, nil
	}
	s.closeOnce.Do(func() {
		s.dev.Stop()
		s.dev.ClearCallback()

		s.bufMu.Lock()
		s.stopped = true
		if len(s.sampleBuf) > 0 {
			tail := make([]int16, len(s.sampleBuf))
			copy(tail, s.sampleBuf)
			s.sampleBuf = nil
			s.bufMu.Unlock()
			s.blockChan <- tail
		} else {
			s.bufMu.Unlock()
		}

		close(s.blockChan)
		<-s.encodeDone
		sessionOpen.Store(false)

		if err, ok := s.encodeErr.Load().(error); ok {
			s.closeErr = err
			return
		}
		enc := s.cfg.Encoder
		if err := enc.Close(); err != nil {
			s.closeErr = err
			return
		}
		s.clip = Clip{
			Data:       enc.Bytes(),
			Format:     enc.Format(),
			Frames:     enc.TotalFrames(),
			Rate:       encoder.SampleRate,
			EncodeTime: enc.EncodeTime(),
		}
	})
	return s.clip, s.closeErr
}

func blockRMS(data []byte) float64 {
	var sumSquares float64
	n := 0
	for i := 0; i+1 < len(data); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(data[i:]))
		normalized := float64(sample) / 32768.0
		sumSquares += normalized * normalized
		n++
	}
	if n == 0 {
		return 0
	}
	rms := math.Sqrt(sumSquares / float64(n))
	if rms > 1 {
		rms = 1
	}
	return rms
}
