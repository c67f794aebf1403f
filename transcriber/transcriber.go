// Package transcriber turns finished audio clips into text through hosted
// speech APIs and classifies every way that can fail.
package transcriber

import (
	"context"

	"murmur/audio"
)

// ErrorKind classifies a failed transcription attempt for the caller. The
// message paired with a kind is always safe to show; raw provider payloads
// never leave the diagnostics log.
type ErrorKind int

const (
	// DeviceUnavailable: no microphone, or permission denied. Terminal for
	// the gesture; never retried.
	DeviceUnavailable ErrorKind = iota
	// ProviderUnavailable: the selected provider has no stored credential.
	// Detected before any network traffic.
	ProviderUnavailable
	// NetworkFailure: the request never produced an HTTP response.
	NetworkFailure
	// ProviderRejected: the provider answered with a non-success status.
	ProviderRejected
	// DeliveryFailure: transcription succeeded but the text could not be
	// written to the clipboard or pasted.
	DeliveryFailure
	// InternalFault: a recovered panic or other bug on our side.
	InternalFault
)

func (k ErrorKind) String() string {
	switch k {
	case DeviceUnavailable:
		return "device_unavailable"
	case ProviderUnavailable:
		return "provider_unavailable"
	case NetworkFailure:
		return "network_failure"
	case ProviderRejected:
		return "provider_rejected"
	case DeliveryFailure:
		return "delivery_failure"
	case InternalFault:
		return "internal_fault"
	}
	return "unknown"
}

// Failure is a classified, display-safe transcription error.
type Failure struct {
	Kind    ErrorKind
	Message string
}

func (f *Failure) Error() string { return f.Kind.String() + ": " + f.Message }

// Outcome is the result of one transcription attempt. Exactly one of three
// shapes: text (Text != ""), empty (no speech), or failed (Err != nil).
type Outcome struct {
	Text string
	Err  *Failure
}

func TextOutcome(text string) Outcome { return Outcome{Text: text} }

func EmptyOutcome() Outcome { return Outcome{} }

func FailedOutcome(kind ErrorKind, msg string) Outcome {
	return Outcome{Err: &Failure{Kind: kind, Message: msg}}
}

// HasText reports whether this outcome carries deliverable text.
func (o Outcome) HasText() bool { return o.Err == nil && o.Text != "" }

// Empty reports a successful attempt that produced no speech.
func (o Outcome) Empty() bool { return o.Err == nil && o.Text == "" }

// Result is a provider's raw answer before trimming and filtering. Metrics
// is nil when the transport did not trace the request.
type Result struct {
	Text    string
	Metrics *NetworkMetrics
}

// Provider is one hosted speech API. Transcribe sends the whole clip in a
// single request and returns the raw transcript; it must not retry.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, clip audio.Clip, lang, apiKey string) (*Result, error)
}
