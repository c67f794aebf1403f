// Package pipeline drives a push-to-talk gesture through recording,
// transcription and delivery, one session at a time.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"murmur/audio"
	"murmur/encoder"
	"murmur/gesture"
	"murmur/mlog"
	"murmur/output"
	"murmur/transcriber"
)

type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
	StateCooldown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	case StateCooldown:
		return "cooldown"
	}
	return "unknown"
}

const (
	defaultMinClip  = 300 * time.Millisecond
	defaultCooldown = 300 * time.Millisecond
)

// Transcriber is the one blocking dependency of the supervisor. It is
// satisfied by *transcriber.Client.
type Transcriber interface {
	Transcribe(ctx context.Context, clip audio.Clip) transcriber.Outcome
}

type Config struct {
	Audio       audio.Context
	DeviceName  string // empty means system default
	Format      string // "wav" or "flac"
	Transcriber Transcriber
	Sink        output.Sink
	Focus       output.Frontmost // optional
	MinClip     time.Duration    // clips shorter than this are discarded
	Cooldown    time.Duration    // charged after every Stop
}

// Supervisor serializes every state transition through one mutex. The
// gesture loop, the audio callback and the transcription goroutine all go
// through it; no state is read-modify-written anywhere else.
type Supervisor struct {
	cfg    Config
	device *audio.DeviceInfo
	vad    *vadProcessor

	mu            sync.Mutex
	state         State
	id            uint64
	cooldownUntil time.Time
	session       *audio.Session
	capture       audio.CaptureDevice
	origin        output.AppID
	lastText      string

	runCtx    context.Context
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func New(cfg Config) (*Supervisor, error) {
	if cfg.Audio == nil || cfg.Transcriber == nil || cfg.Sink == nil {
		return nil, errors.New("pipeline: audio context, transcriber and sink are required")
	}
	if cfg.Format == "" {
		cfg.Format = "wav"
	}
	if cfg.MinClip == 0 {
		cfg.MinClip = defaultMinClip
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = defaultCooldown
	}

	device, err := audio.FindDevice(cfg.Audio, cfg.DeviceName)
	if err != nil {
		mlog.Warnf("using default capture device: %v", err)
		device = nil
	}

	vad, err := newVADProcessor()
	if err != nil {
		mlog.Warnf("voice detection unavailable: %v", err)
		vad = nil
	}

	return &Supervisor{
		cfg:    cfg,
		device: device,
		vad:    vad,
		runCtx: context.Background(),
		events: make(chan Event, 128),
		done:   make(chan struct{}),
	}, nil
}

// Events is the UI-facing channel. Consumers should drain it promptly; only
// level samples are dropped when they fall behind.
func (s *Supervisor) Events() <-chan Event { return s.events }

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCooldown && time.Now().After(s.cooldownUntil) {
		s.state = StateIdle
	}
	return s.state
}

// LastText returns the most recent delivered transcript.
func (s *Supervisor) LastText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastText
}

// SetProvider switches the transcription provider for the next session.
func (s *Supervisor) SetProvider(name string) error {
	if c, ok := s.cfg.Transcriber.(interface{ SetProvider(string) error }); ok {
		return c.SetProvider(name)
	}
	return nil
}

// SetLanguage changes the language hint for the next session.
func (s *Supervisor) SetLanguage(lang string) {
	if c, ok := s.cfg.Transcriber.(interface{ SetLanguage(string) }); ok {
		c.SetLanguage(lang)
	}
}

func (s *Supervisor) providerName() string {
	if c, ok := s.cfg.Transcriber.(interface{ Provider() string }); ok {
		return c.Provider()
	}
	return ""
}

// Run consumes gesture intents until the context ends or the channel closes.
func (s *Supervisor) Run(ctx context.Context, intents <-chan gesture.Intent) {
	s.runCtx = ctx
	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case intent, ok := <-intents:
			if !ok {
				s.shutdown()
				return
			}
			switch intent {
			case gesture.IntentStart:
				s.handleStart()
			case gesture.IntentStop:
				s.handleStop()
			}
		}
	}
}

func (s *Supervisor) shutdown() {
	s.mu.Lock()
	sess := s.session
	dev := s.capture
	s.session = nil
	s.capture = nil
	s.state = StateIdle
	s.mu.Unlock()

	if sess != nil {
		sess.Close()
	}
	if dev != nil {
		dev.Close()
	}
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Supervisor) publish(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// publishLevel never blocks the audio callback; a dropped sample is fine.
func (s *Supervisor) publishLevel(id uint64, level float64) {
	select {
	case s.events <- Event{Kind: EventLevel, Session: id, Level: level}:
	default:
	}
}

func (s *Supervisor) handleStart() {
	s.mu.Lock()
	if s.state == StateCooldown && time.Now().After(s.cooldownUntil) {
		s.state = StateIdle
	}
	if s.state != StateIdle {
		st := s.state
		s.mu.Unlock()
		mlog.Infof("start ignored in state %s", st)
		return
	}
	s.id++
	id := s.id
	// Provisional: refuses further starts while the device opens. Reverted
	// without cooldown if the open fails.
	s.state = StateRecording
	s.mu.Unlock()

	var origin output.AppID
	if s.cfg.Focus != nil {
		origin = s.cfg.Focus.Capture()
	}

	enc, err := encoder.New(s.cfg.Format)
	if err != nil {
		mlog.Errorf("encoder: %v", err)
		s.failOpen(id, transcriber.InternalFault, "unsupported clip format")
		return
	}

	dev, err := s.cfg.Audio.NewCapture(s.device, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   1,
	})
	if err != nil {
		mlog.Errorf("capture device: %v", err)
		s.failOpen(id, transcriber.DeviceUnavailable, "microphone unavailable")
		return
	}

	if s.vad != nil {
		s.vad.Reset()
	}
	sess, err := audio.Open(dev, audio.SessionConfig{
		Encoder: enc,
		OnLevel: func(rms float64) { s.publishLevel(id, rms) },
		OnPCM:   s.tapPCM,
	})
	if err != nil {
		dev.Close()
		mlog.Errorf("open session: %v", err)
		s.failOpen(id, transcriber.DeviceUnavailable, "could not start recording")
		return
	}

	s.mu.Lock()
	s.session = sess
	s.capture = dev
	s.origin = origin
	s.mu.Unlock()

	mlog.SessionStart(id, s.providerName(), s.cfg.Format)
	s.publish(Event{Kind: EventRecordingStarted, Session: id})
	if s.vad != nil {
		go s.watchSilence(id)
	}
}

// failOpen returns to Idle without charging a cooldown: a failed open never
// recorded anything, so the next press should work immediately.
func (s *Supervisor) failOpen(id uint64, kind transcriber.ErrorKind, msg string) {
	s.mu.Lock()
	if s.id == id && s.state == StateRecording {
		s.state = StateIdle
	}
	s.mu.Unlock()
	s.publish(Event{Kind: EventError, Session: id, ErrKind: kind, Message: msg})
}

func (s *Supervisor) tapPCM(block []byte) {
	if s.vad != nil {
		s.vad.Process(block)
	}
}

func (s *Supervisor) handleStop() {
	s.mu.Lock()
	if s.state != StateRecording || s.session == nil {
		s.mu.Unlock()
		return
	}
	id := s.id
	sess := s.session
	dev := s.capture
	origin := s.origin
	s.session = nil
	s.capture = nil
	s.state = StateTranscribing
	s.mu.Unlock()

	clip, err := sess.Close()
	dev.Close()
	if err != nil {
		mlog.Errorf("finalize clip: %v", err)
		s.publish(Event{Kind: EventError, Session: id, ErrKind: transcriber.InternalFault, Message: "could not finalize recording"})
		s.enterCooldown(id)
		return
	}

	if clip.Duration() < s.cfg.MinClip {
		mlog.Infof("clip %v below minimum, discarded", clip.Duration())
		s.publish(Event{Kind: EventDiscarded, Session: id, Message: "too short"})
		s.enterCooldown(id)
		return
	}

	s.publish(Event{Kind: EventTranscribingStarted, Session: id})
	go func() {
		out := s.cfg.Transcriber.Transcribe(s.runCtx, clip)
		s.finish(id, origin, clip.Duration(), out)
	}()
}

// finish applies a transcription outcome, unless a newer session replaced
// this one in the meantime, in which case the result vanishes without any
// side effect.
func (s *Supervisor) finish(id uint64, origin output.AppID, audioLen time.Duration, out transcriber.Outcome) {
	s.mu.Lock()
	if s.state != StateTranscribing || s.id != id {
		s.mu.Unlock()
		mlog.Infof("stale result for session %d dropped", id)
		return
	}
	if out.HasText() {
		s.lastText = out.Text
	}
	s.mu.Unlock()

	switch {
	case out.HasText():
		s.publish(Event{Kind: EventTranscription, Session: id, Text: out.Text})
		mlog.TranscriptionText(out.Text)
		mlog.SessionEnd(id, "delivered", audioLen.Seconds(), 0)
		if err := s.cfg.Sink.Deliver(out.Text, origin); err != nil {
			mlog.Errorf("delivery: %v", err)
			s.publish(Event{Kind: EventError, Session: id, ErrKind: transcriber.DeliveryFailure, Message: "could not paste transcript"})
		}
	case out.Empty():
		mlog.SessionEnd(id, "empty", audioLen.Seconds(), 0)
		s.publish(Event{Kind: EventNoSpeech, Session: id})
	default:
		mlog.SessionEnd(id, out.Err.Kind.String(), audioLen.Seconds(), 0)
		s.publish(Event{Kind: EventError, Session: id, ErrKind: out.Err.Kind, Message: out.Err.Message})
	}
	s.enterCooldown(id)
}

func (s *Supervisor) enterCooldown(id uint64) {
	s.mu.Lock()
	if s.id == id {
		s.state = StateCooldown
		s.cooldownUntil = time.Now().Add(s.cfg.Cooldown)
	}
	s.mu.Unlock()
}

func (s *Supervisor) watchSilence(id uint64) {
	mon := newSilenceMonitor()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		live := s.state == StateRecording && s.id == id
		s.mu.Unlock()
		if !live {
			return
		}

		switch mon.Tick(s.vad.HasSpeechTick()) {
		case silenceWarn, silenceRepeat:
			s.publish(Event{Kind: EventSilenceWarning, Session: id})
		case silenceWarnClear:
			s.publish(Event{Kind: EventSilenceCleared, Session: id})
		}
	}
}
