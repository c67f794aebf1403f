package audio

import (
	"errors"
	"testing"
	"time"

	"murmur/encoder"
)

func openTone(t *testing.T, seconds float64, cfg SessionConfig) *Session {
	t.Helper()
	ctx := NewFakeToneContext(440, seconds)
	dev, err := ctx.NewCapture(nil, CaptureConfig{SampleRate: encoder.SampleRate, Channels: 1})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}
	if cfg.Encoder == nil {
		cfg.Encoder = encoder.NewWav()
	}
	s, err := Open(dev, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestSessionCapturesClip(t *testing.T) {
	s := openTone(t, 1.0, SessionConfig{})
	clip, err := s.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if clip.Empty() {
		t.Fatal("expected non-empty clip")
	}
	if clip.Format != "wav" {
		t.Errorf("Format = %q, want wav", clip.Format)
	}
	if clip.Frames != uint64(encoder.SampleRate) {
		t.Errorf("Frames = %d, want %d", clip.Frames, encoder.SampleRate)
	}
	if d := clip.Duration(); d < 990*time.Millisecond || d > 1010*time.Millisecond {
		t.Errorf("Duration = %v, want ~1s", d)
	}
	if clip.EncodeTime <= 0 {
		t.Error("EncodeTime not carried onto the clip")
	}
}

func TestSessionExclusive(t *testing.T) {
	s := openTone(t, 0.1, SessionConfig{})

	ctx := NewFakeToneContext(440, 0.1)
	dev, _ := ctx.NewCapture(nil, CaptureConfig{})
	if _, err := Open(dev, SessionConfig{Encoder: encoder.NewWav()}); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("second Open err = %v, want ErrAlreadyRecording", err)
	}

	if _, err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The slot frees up once the first session closes.
	s2, err := Open(dev, SessionConfig{Encoder: encoder.NewWav()})
	if err != nil {
		t.Fatalf("Open after Close: %v", err)
	}
	s2.Close()
}

func TestSessionCloseIdempotent(t *testing.T) {
	s := openTone(t, 0.2, SessionConfig{})
	first, err := s.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	second, err := s.Close()
	if err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if second.Frames != first.Frames || len(second.Data) != len(first.Data) {
		t.Error("repeated Close returned a different clip")
	}
}

func TestSessionNilClose(t *testing.T) {
	var s *Session
	clip, err := s.Close()
	if err != nil {
		t.Fatalf("nil Close: %v", err)
	}
	if !clip.Empty() {
		t.Error("nil session clip should be empty")
	}
	if clip.Rate != encoder.SampleRate {
		t.Errorf("Rate = %d, want %d", clip.Rate, encoder.SampleRate)
	}
}

func TestSessionDeviceStartFailure(t *testing.T) {
	ctx := NewFakeToneContext(440, 0.1)
	ctx.FailStart(errors.New("stream refused"))
	dev, _ := ctx.NewCapture(nil, CaptureConfig{})

	_, err := Open(dev, SessionConfig{Encoder: encoder.NewWav()})
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("Open err = %v, want ErrDeviceUnavailable", err)
	}

	// A failed open must not leave the exclusivity slot taken.
	s := openTone(t, 0.1, SessionConfig{})
	s.Close()
}

func TestSessionLevels(t *testing.T) {
	var levels []float64
	s := openTone(t, 0.5, SessionConfig{
		OnLevel: func(rms float64) { levels = append(levels, rms) },
	})
	s.Close()

	if len(levels) == 0 {
		t.Fatal("expected level callbacks during capture")
	}
	for _, l := range levels {
		if l < 0 || l > 1 {
			t.Fatalf("level %v out of [0,1]", l)
		}
	}
	// A loud sine tone should register well above silence.
	var max float64
	for _, l := range levels {
		if l > max {
			max = l
		}
	}
	if max < 0.1 {
		t.Errorf("peak level %v too low for a tone", max)
	}
}

type panicEncoder struct {
	encoder.Encoder
}

func (p *panicEncoder) EncodeBlock([]int16) error { panic("corrupt block") }

func TestSessionEncoderPanicSurfacesAtClose(t *testing.T) {
	s := openTone(t, 1.0, SessionConfig{Encoder: &panicEncoder{Encoder: encoder.NewWav()}})
	if _, err := s.Close(); err == nil {
		t.Fatal("Close must report the encoder panic")
	}

	// The exclusivity slot frees up even after a panic.
	s2 := openTone(t, 0.1, SessionConfig{})
	s2.Close()
}

func TestSessionPCMTap(t *testing.T) {
	var taps int
	s := openTone(t, 0.3, SessionConfig{
		OnPCM: func(block []byte) { taps++ },
	})
	s.Close()
	if taps == 0 {
		t.Error("expected raw PCM tap callbacks")
	}
}
