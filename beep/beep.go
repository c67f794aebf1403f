// Package beep plays the short audio cues around a recording: a high tick
// when capture starts, a lower one when it stops, and a low double-beep on
// errors or silence warnings. Everything here is best effort; a missing
// output device just means no sound.
package beep

import "math"

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Start beep: high pitch, short
	startFreq   = 1200
	startVolume = 0.5
	startDecay  = 60

	// End beep: medium pitch, slightly longer
	endFreq   = 900
	endVolume = 0.5
	endDecay  = 40

	// Error beep: low pitch double-beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)

// tone synthesizes one exponentially decaying sine as mono S16 samples.
func tone(freq, duration, volume, decay float64) []int16 {
	n := int(sampleRate * duration)
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / sampleRate
		env := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * env)
	}
	return samples
}

// doubleTone plays the same tone twice with a silent gap between.
func doubleTone(freq, beepDur, gapDur, volume, decay float64) []int16 {
	b := tone(freq, beepDur, volume, decay)
	out := make([]int16, 0, 2*len(b)+int(sampleRate*gapDur))
	out = append(out, b...)
	out = append(out, make([]int16, int(sampleRate*gapDur))...)
	return append(out, b...)
}
