package transcriber

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"murmur/audio"
	"murmur/mlog"
	"murmur/secret"
)

// Client selects a provider, attaches its credential and language hint, and
// reduces every attempt to an Outcome. One attempt per call; a transient
// failure is reported, never replayed.
type Client struct {
	mu        sync.Mutex
	providers map[string]Provider
	active    string
	lang      string
	filter    FilterPolicy
	secrets   secret.Store
}

// NewClient registers the built-in providers and activates the named one.
func NewClient(secrets secret.Store, provider string) (*Client, error) {
	c := &Client{
		providers: map[string]Provider{},
		lang:      "en",
		filter:    DefaultFilter(),
		secrets:   secrets,
	}
	c.Register(NewOpenAI())
	c.Register(NewGroq())
	if err := c.SetProvider(provider); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) Register(p Provider) {
	c.mu.Lock()
	c.providers[p.Name()] = p
	c.mu.Unlock()
}

// SetProvider switches the active provider. Switching does not require a
// stored credential; a missing key surfaces on the next transcription.
func (c *Client) SetProvider(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.providers[name]; !ok {
		return fmt.Errorf("transcriber: unknown provider %q", name)
	}
	c.active = name
	return nil
}

func (c *Client) Provider() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Client) SetLanguage(lang string) {
	c.mu.Lock()
	c.lang = lang
	c.mu.Unlock()
}

func (c *Client) SetFilter(p FilterPolicy) {
	c.mu.Lock()
	c.filter = p
	c.mu.Unlock()
}

// Warm pre-opens the active provider's connection, if it supports that.
func (c *Client) Warm() {
	c.mu.Lock()
	p := c.providers[c.active]
	c.mu.Unlock()
	if w, ok := p.(interface{ Warm() }); ok {
		w.Warm()
	}
}

// Transcribe sends the clip to the active provider and classifies the result.
// A panic anywhere below is recovered into an InternalFault outcome so the
// caller's state machine always gets an answer.
func (c *Client) Transcribe(ctx context.Context, clip audio.Clip) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			mlog.Errorf("transcribe panic: %v", r)
			out = FailedOutcome(InternalFault, "internal error during transcription")
		}
	}()

	c.mu.Lock()
	provider := c.providers[c.active]
	name := c.active
	lang := c.lang
	filter := c.filter
	c.mu.Unlock()

	apiKey, err := c.secrets.Get(name)
	if err != nil {
		return FailedOutcome(ProviderUnavailable,
			fmt.Sprintf("no API key configured for %s", name))
	}

	start := time.Now()
	res, err := provider.Transcribe(ctx, clip, lang, apiKey)
	if err != nil {
		return classify(name, err)
	}

	m := mlog.Metrics{
		AudioLengthS:     clip.Duration().Seconds(),
		RawSizeKB:        float64(clip.Frames*2) / 1024,
		CompressedSizeKB: float64(len(clip.Data)) / 1024,
		EncodeTimeMs:     float64(clip.EncodeTime.Milliseconds()),
		TotalTimeMs:      float64(time.Since(start).Milliseconds()),
	}
	connReused := false
	if res.Metrics != nil {
		m.TTFBMs = float64(res.Metrics.TTFB.Milliseconds())
		connReused = res.Metrics.ConnReused
	}
	mlog.TranscriptionMetrics(m, clip.Format, name, connReused)

	text := strings.TrimSpace(res.Text)
	if text == "" || filter.Suppress(text, clip.Duration()) {
		return EmptyOutcome()
	}
	return TextOutcome(text)
}

// classify maps a provider error to a display-safe Failure. The raw body, if
// any, goes to the diagnostics log here and nowhere else.
func classify(provider string, err error) Outcome {
	var he *httpError
	if errors.As(err, &he) {
		mlog.Payload(provider, he.Status, he.Body)
		switch {
		case he.Status == 401:
			return FailedOutcome(ProviderRejected, "invalid API key")
		case he.Status == 429 || bytes.Contains(he.Body, []byte("insufficient_quota")):
			return FailedOutcome(ProviderRejected, "quota exceeded")
		default:
			return FailedOutcome(ProviderRejected,
				fmt.Sprintf("provider error (status %d)", he.Status))
		}
	}
	mlog.Errorf("%s request failed: %v", provider, err)
	return FailedOutcome(NetworkFailure, "could not reach "+provider)
}
