package transcriber

import (
	"strings"
	"time"
)

// DefaultDenyList holds the classic whisper hallucinations on silent or
// near-silent input.
var DefaultDenyList = []string{
	"you",
	"thank you",
	"thanks for watching",
	"subscribe",
}

// DefaultShortUtterance is the clip length below which a deny-list match is
// treated as a hallucination rather than real speech.
const DefaultShortUtterance = 2500 * time.Millisecond

// FilterPolicy suppresses recognizer artifacts: text that exactly matches the
// deny list after normalization, on a clip short enough that the phrase is
// implausible as dictation.
type FilterPolicy struct {
	DenyList       []string
	ShortUtterance time.Duration
}

func DefaultFilter() FilterPolicy {
	return FilterPolicy{
		DenyList:       DefaultDenyList,
		ShortUtterance: DefaultShortUtterance,
	}
}

// Suppress reports whether the transcript should be treated as no-speech.
func (p FilterPolicy) Suppress(text string, clipLen time.Duration) bool {
	if clipLen >= p.ShortUtterance {
		return false
	}
	got := normalize(text)
	for _, phrase := range p.DenyList {
		if got == normalize(phrase) {
			return true
		}
	}
	return false
}

// normalize trims whitespace, case-folds and drops a single trailing period,
// so "Thank you." and "thank you" compare equal.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".")
	return s
}
