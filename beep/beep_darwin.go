//go:build darwin

package beep

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	audioCtx *malgo.AllocatedContext
	outDev   *malgo.Device

	startCue []byte
	endCue   []byte
	errorCue []byte

	soundOnce sync.Once
	playMu    sync.Mutex

	// The data callback reads these without the mutex.
	cueData atomic.Pointer[[]byte]
	cuePos  atomic.Uint32
)

func initSound() {
	var err error
	audioCtx, err = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}

	startCue = pcmBytes(tone(startFreq, 0.03, startVolume, startDecay))
	endCue = pcmBytes(tone(endFreq, 0.05, endVolume, endDecay))
	errorCue = pcmBytes(doubleTone(errorFreq, 0.08, 0.05, errorVolume, errorDecay))

	if err := openDevice(); err != nil {
		audioCtx.Uninit()
		audioCtx = nil
	}
}

func openDevice() error {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1
	cfg.SampleRate = sampleRate

	var err error
	outDev, err = malgo.InitDevice(audioCtx.Context, cfg, malgo.DeviceCallbacks{Data: fillOutput})
	return err
}

func pcmBytes(mono []int16) []byte {
	out := make([]byte, len(mono)*2)
	for i, s := range mono {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

// fillOutput streams the active cue into the device buffer, then silence.
func fillOutput(pOutput, _ []byte, frameCount uint32) {
	for i := range pOutput {
		pOutput[i] = 0
	}

	cue := cueData.Load()
	if cue == nil {
		return
	}
	pos := cuePos.Load()
	if pos >= uint32(len(*cue)) {
		cueData.Store(nil)
		return
	}

	n := uint32(copy(pOutput[:frameCount*2], (*cue)[pos:]))
	cuePos.Store(pos + n)
}

func play(cue []byte) {
	if audioCtx == nil || len(cue) == 0 {
		return
	}

	playMu.Lock()
	defer playMu.Unlock()
	if outDev == nil {
		return
	}

	// A cue may still be draining; restart from a clean device.
	outDev.Stop()
	cuePos.Store(0)
	cueData.Store(&cue)

	if err := outDev.Start(); err != nil {
		// The device handle goes stale across sleep/wake. Reopen once.
		outDev.Uninit()
		if err := openDevice(); err != nil || outDev.Start() != nil {
			cueData.Store(nil)
		}
	}
}

func Init() {
	soundOnce.Do(initSound)
}

func PlayStart() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	play(startCue)
}

func PlayEnd() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	play(endCue)
}

func PlayError() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	play(errorCue)
}
