//go:build windows

package beep

import "github.com/gen2brain/beeep"

// Windows playback goes through the system beep; pitch and envelope are
// approximated with frequency and duration only.

func Init() {}

func PlayStart() {
	if disabled {
		return
	}
	go beeep.Beep(startFreq, 80)
}

func PlayEnd() {
	if disabled {
		return
	}
	go beeep.Beep(endFreq, 120)
}

func PlayError() {
	if disabled {
		return
	}
	go func() {
		beeep.Beep(errorFreq, 80)
		beeep.Beep(errorFreq, 80)
	}()
}
