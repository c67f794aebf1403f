package transcriber

import (
	"testing"
	"time"
)

func TestFilterSuppressesKnownArtifacts(t *testing.T) {
	p := DefaultFilter()
	short := 500 * time.Millisecond

	suppressed := []string{
		"you",
		"You",
		" Thank you. ",
		"thanks for watching",
		"Subscribe.",
	}
	for _, text := range suppressed {
		if !p.Suppress(text, short) {
			t.Errorf("Suppress(%q) = false, want true", text)
		}
	}
}

func TestFilterKeepsRealSpeech(t *testing.T) {
	p := DefaultFilter()
	short := 500 * time.Millisecond

	kept := []string{
		"thank you everyone for coming",
		"you are right",
		"ship it",
		"thank you..",
	}
	for _, text := range kept {
		if p.Suppress(text, short) {
			t.Errorf("Suppress(%q) = true, want false", text)
		}
	}
}

func TestFilterIgnoresLongClips(t *testing.T) {
	p := DefaultFilter()
	if p.Suppress("thank you", 3*time.Second) {
		t.Error("deny-list phrase on a long clip should not be suppressed")
	}
	if p.Suppress("thank you", DefaultShortUtterance) {
		t.Error("threshold itself is not below the ceiling")
	}
}

func TestFilterCustomDenyList(t *testing.T) {
	p := FilterPolicy{DenyList: []string{"bye"}, ShortUtterance: time.Second}
	if !p.Suppress("Bye.", 200*time.Millisecond) {
		t.Error("custom deny-list entry not suppressed")
	}
	if p.Suppress("thank you", 200*time.Millisecond) {
		t.Error("default entry should not apply to a custom list")
	}
}
