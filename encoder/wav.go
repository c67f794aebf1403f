package encoder

import (
	"bytes"
	"encoding/binary"
	"time"
)

const wavHeaderSize = 44

// WavEncoder writes a standard 44-byte RIFF header plus raw little-endian
// S16 mono samples. Sizes are patched in on Close.
type WavEncoder struct {
	buf         bytes.Buffer
	totalFrames uint64
	encodeTime  time.Duration
	closed      bool
}

func NewWav() *WavEncoder {
	e := &WavEncoder{}
	e.buf.Write(make([]byte, wavHeaderSize))
	return e
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	raw := make([]byte, len(block)*2)
	for i, s := range block {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	e.buf.Write(raw)
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	b := e.buf.Bytes()
	dataSize := uint32(len(b) - wavHeaderSize)
	byteRate := uint32(SampleRate * Channels * BitsPerSample / 8)
	blockAlign := uint16(Channels * BitsPerSample / 8)

	copy(b[0:4], "RIFF")
	binary.LittleEndian.PutUint32(b[4:8], wavHeaderSize-8+dataSize)
	copy(b[8:12], "WAVE")
	copy(b[12:16], "fmt ")
	binary.LittleEndian.PutUint32(b[16:20], 16)
	binary.LittleEndian.PutUint16(b[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(b[22:24], Channels)
	binary.LittleEndian.PutUint32(b[24:28], SampleRate)
	binary.LittleEndian.PutUint32(b[28:32], byteRate)
	binary.LittleEndian.PutUint16(b[32:34], blockAlign)
	binary.LittleEndian.PutUint16(b[34:36], BitsPerSample)
	copy(b[36:40], "data")
	binary.LittleEndian.PutUint32(b[40:44], dataSize)
	return nil
}

func (e *WavEncoder) Bytes() []byte { return e.buf.Bytes() }

func (e *WavEncoder) Format() string { return "wav" }

func (e *WavEncoder) TotalFrames() uint64 { return e.totalFrames }

func (e *WavEncoder) AddEncodeTime(d time.Duration) { e.encodeTime += d }

func (e *WavEncoder) EncodeTime() time.Duration { return e.encodeTime }
