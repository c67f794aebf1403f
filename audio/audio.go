package audio

import (
	"fmt"
	"time"
)

// DataCallback receives raw little-endian S16 mono PCM from the capture
// thread. It must return quickly and must never block.
type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}

// Clip is one finalized, encoded recording. It lives in memory only and is
// dropped after a single transcription attempt.
type Clip struct {
	Data       []byte
	Format     string // "wav" or "flac"
	Frames     uint64
	Rate       uint32
	EncodeTime time.Duration // CPU time spent encoding, accumulated off the capture thread
}

func (c Clip) Duration() time.Duration {
	if c.Rate == 0 {
		return 0
	}
	return time.Duration(float64(c.Frames) / float64(c.Rate) * float64(time.Second))
}

func (c Clip) Empty() bool { return c.Frames == 0 }

// FindDevice resolves a configured device name, nil meaning system default.
func FindDevice(ctx Context, name string) (*DeviceInfo, error) {
	if name == "" {
		return nil, nil
	}
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("capture device %q not found", name)
}
