package beep

import "testing"

func peak(samples []int16) int16 {
	var p int16
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > p {
			p = s
		}
	}
	return p
}

func TestToneShape(t *testing.T) {
	s := tone(startFreq, 0.2, startVolume, startDecay)
	want := int(sampleRate * 0.2)
	if len(s) != want {
		t.Fatalf("len = %d, want %d", len(s), want)
	}
	if p := peak(s); p == 0 || float64(p) > startVolume*32767+1 {
		t.Errorf("peak = %d, want within (0, %v]", p, startVolume*32767)
	}
	// The envelope decays: the tail is much quieter than the attack.
	head := peak(s[:len(s)/10])
	tail := peak(s[len(s)-len(s)/10:])
	if tail >= head/2 {
		t.Errorf("tail peak %d not decayed below head peak %d", tail, head)
	}
}

func TestDoubleToneHasSilentGap(t *testing.T) {
	beepLen := int(sampleRate * 0.08)
	gapLen := int(sampleRate * 0.05)
	s := doubleTone(errorFreq, 0.08, 0.05, errorVolume, errorDecay)
	if len(s) != 2*beepLen+gapLen {
		t.Fatalf("len = %d, want %d", len(s), 2*beepLen+gapLen)
	}
	if p := peak(s[beepLen : beepLen+gapLen]); p != 0 {
		t.Errorf("gap peak = %d, want silence", p)
	}
	if peak(s[:beepLen]) == 0 || peak(s[beepLen+gapLen:]) == 0 {
		t.Error("expected audible tone on both sides of the gap")
	}
}
