package pipeline

import "murmur/transcriber"

// EventKind enumerates everything the pipeline tells the UI layer.
type EventKind int

const (
	EventRecordingStarted EventKind = iota
	EventLevel
	EventTranscribingStarted
	EventTranscription
	EventNoSpeech
	EventDiscarded
	EventSilenceWarning
	EventSilenceCleared
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventRecordingStarted:
		return "recording_started"
	case EventLevel:
		return "level"
	case EventTranscribingStarted:
		return "transcribing_started"
	case EventTranscription:
		return "transcription"
	case EventNoSpeech:
		return "no_speech"
	case EventDiscarded:
		return "discarded"
	case EventSilenceWarning:
		return "silence_warning"
	case EventSilenceCleared:
		return "silence_cleared"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event is one pipeline state change, tagged with the session that produced
// it. Per session the order is: recording started, level samples,
// transcribing started, then exactly one terminal event.
type Event struct {
	Kind    EventKind
	Session uint64

	Text    string                // EventTranscription
	Level   float64               // EventLevel, bounded [0,1]
	ErrKind transcriber.ErrorKind // EventError
	Message string                // EventError, EventDiscarded
}
