package pipeline

import "time"

const (
	tickInterval     = 100 * time.Millisecond
	silenceWarnEvery = 8 * time.Second
	speechMinRatio   = 0.10
	speechClearRatio = 0.25 // higher threshold to clear warning (hysteresis)
)

type silenceEvent int

const (
	silenceNone      silenceEvent = iota
	silenceWarn                   // no voice detected
	silenceWarnClear              // speech resumed after warning
	silenceRepeat                 // repeat warning (every 8s)
)

// silenceMonitor watches a rolling window of per-tick speech flags and warns
// when the user has been holding the key without saying anything.
type silenceMonitor struct {
	warnAt int

	ticks    int
	window   []bool
	warned   bool
	lastWarn int
}

func newSilenceMonitor() *silenceMonitor {
	warnAt := int(silenceWarnEvery / tickInterval)
	return &silenceMonitor{
		warnAt: warnAt,
		window: make([]bool, warnAt),
	}
}

func (m *silenceMonitor) ratio() float64 {
	n := m.warnAt
	if m.ticks < n {
		n = m.ticks
	}
	if n == 0 {
		return 1.0
	}
	count := 0
	for i := 0; i < n; i++ {
		if m.window[(m.ticks-1-i+m.warnAt)%m.warnAt] {
			count++
		}
	}
	return float64(count) / float64(n)
}

func (m *silenceMonitor) Tick(hasSpeech bool) silenceEvent {
	m.window[m.ticks%m.warnAt] = hasSpeech
	m.ticks++

	r := m.ratio()

	// Warn: 8s window below threshold
	if m.ticks >= m.warnAt && r < speechMinRatio && !m.warned {
		m.warned = true
		m.lastWarn = m.ticks
		return silenceWarn
	}
	// Clear: speech ratio above clear threshold
	if m.warned && r >= speechClearRatio {
		m.warned = false
		return silenceWarnClear
	}
	// Repeat warning every 8s while still silent
	if m.warned && m.ticks-m.lastWarn >= m.warnAt {
		m.lastWarn = m.ticks
		return silenceRepeat
	}

	return silenceNone
}
