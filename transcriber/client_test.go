package transcriber

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"murmur/audio"
	"murmur/encoder"
	"murmur/secret"
)

func shortClip() audio.Clip {
	return audio.Clip{Data: []byte("pcm"), Format: "wav", Frames: 8000, Rate: encoder.SampleRate}
}

func longClip() audio.Clip {
	return audio.Clip{Data: []byte("pcm"), Format: "wav", Frames: 3 * encoder.SampleRate, Rate: encoder.SampleRate}
}

func newFakeClient(t *testing.T, fake *Fake, secrets secret.Store) *Client {
	t.Helper()
	if secrets == nil {
		s := secret.NewFake()
		s.Set("fake", "key-123")
		secrets = s
	}
	c, err := NewClient(secrets, "openai")
	if err != nil {
		t.Fatal(err)
	}
	c.Register(fake)
	if err := c.SetProvider("fake"); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestClientDeliversText(t *testing.T) {
	fake := NewFake(FakeResponse{Text: " hello world "})
	c := newFakeClient(t, fake, nil)

	out := c.Transcribe(context.Background(), longClip())
	if !out.HasText() {
		t.Fatalf("outcome = %+v, want text", out)
	}
	if out.Text != "hello world" {
		t.Errorf("Text = %q, want trimmed %q", out.Text, "hello world")
	}
	if fake.LastLanguage() != "en" {
		t.Errorf("language hint = %q, want en", fake.LastLanguage())
	}
	if fake.LastKey() != "key-123" {
		t.Errorf("api key = %q, want key-123", fake.LastKey())
	}
}

func TestClientMissingCredential(t *testing.T) {
	fake := NewFake(FakeResponse{Text: "never sent"})
	c := newFakeClient(t, fake, secret.NewFake())

	out := c.Transcribe(context.Background(), longClip())
	if out.Err == nil || out.Err.Kind != ProviderUnavailable {
		t.Fatalf("outcome = %+v, want ProviderUnavailable", out)
	}
	if fake.Calls() != 0 {
		t.Error("missing credential must be caught before any provider call")
	}
}

func TestClientEmptyTranscript(t *testing.T) {
	fake := NewFake(FakeResponse{Text: "   "})
	c := newFakeClient(t, fake, nil)

	out := c.Transcribe(context.Background(), longClip())
	if !out.Empty() {
		t.Fatalf("outcome = %+v, want empty", out)
	}
}

func TestClientSuppressesHallucination(t *testing.T) {
	fake := NewFake(FakeResponse{Text: "Thank you."})
	c := newFakeClient(t, fake, nil)

	if out := c.Transcribe(context.Background(), shortClip()); !out.Empty() {
		t.Fatalf("short-clip artifact: outcome = %+v, want empty", out)
	}
	if out := c.Transcribe(context.Background(), longClip()); !out.HasText() {
		t.Fatalf("long-clip phrase: outcome = %+v, want text", out)
	}
}

func TestClientUnknownProvider(t *testing.T) {
	c, err := NewClient(secret.NewFake(), "openai")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetProvider("deepgram"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if c.Provider() != "openai" {
		t.Errorf("failed switch changed active provider to %q", c.Provider())
	}
}

func TestNewClientRejectsUnknownProvider(t *testing.T) {
	if _, err := NewClient(secret.NewFake(), "whisperx"); err == nil {
		t.Fatal("expected error")
	}
}

type panicProvider struct{}

func (panicProvider) Name() string { return "panicky" }
func (panicProvider) Transcribe(context.Context, audio.Clip, string, string) (*Result, error) {
	panic("boom")
}

func TestClientRecoversPanic(t *testing.T) {
	s := secret.NewFake()
	s.Set("panicky", "k")
	c, err := NewClient(s, "openai")
	if err != nil {
		t.Fatal(err)
	}
	c.Register(panicProvider{})
	if err := c.SetProvider("panicky"); err != nil {
		t.Fatal(err)
	}

	out := c.Transcribe(context.Background(), longClip())
	if out.Err == nil || out.Err.Kind != InternalFault {
		t.Fatalf("outcome = %+v, want InternalFault", out)
	}
}

func serverProvider(srv *httptest.Server) *Whisper {
	return &Whisper{
		name:   "fakehost",
		apiURL: srv.URL,
		model:  "whisper-1",
		client: NewTracedClient(),
	}
}

func clientFor(t *testing.T, p Provider) *Client {
	t.Helper()
	s := secret.NewFake()
	s.Set(p.Name(), "sk-test")
	c, err := NewClient(s, "openai")
	if err != nil {
		t.Fatal(err)
	}
	c.Register(p)
	if err := c.SetProvider(p.Name()); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestWhisperRequestShape(t *testing.T) {
	var gotModel, gotLang, gotFile, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLang = r.FormValue("language")
		gotAuth = r.Header.Get("Authorization")
		if _, hdr, err := r.FormFile("file"); err == nil {
			gotFile = hdr.Filename
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "hello"})
	}))
	defer srv.Close()

	c := clientFor(t, serverProvider(srv))
	out := c.Transcribe(context.Background(), longClip())
	if !out.HasText() || out.Text != "hello" {
		t.Fatalf("outcome = %+v, want text hello", out)
	}
	if gotModel != "whisper-1" {
		t.Errorf("model = %q", gotModel)
	}
	if gotLang != "en" {
		t.Errorf("language = %q", gotLang)
	}
	if gotFile != "audio.wav" {
		t.Errorf("filename = %q", gotFile)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("authorization = %q", gotAuth)
	}
}

func TestWhisperTracesRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"text": "hi"})
	}))
	defer srv.Close()

	res, err := serverProvider(srv).Transcribe(context.Background(), longClip(), "en", "sk-test")
	if err != nil {
		t.Fatal(err)
	}
	if res.Metrics == nil {
		t.Fatal("expected traced network metrics")
	}
	if res.Metrics.Total <= 0 {
		t.Errorf("Total = %v, want > 0", res.Metrics.Total)
	}
	if res.Metrics.TTFB <= 0 {
		t.Errorf("TTFB = %v, want > 0", res.Metrics.TTFB)
	}
}

func TestWhisperStatusMapping(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"unauthorized", 401, `{"error":{"message":"bad key"}}`, "invalid API key"},
		{"rate limited", 429, `{"error":{"message":"slow down"}}`, "quota exceeded"},
		{"quota body", 400, `{"error":{"code":"insufficient_quota"}}`, "quota exceeded"},
		{"server error", 500, `{"error":{"message":"secret internals"}}`, "provider error (status 500)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := clientFor(t, serverProvider(srv))
			out := c.Transcribe(context.Background(), longClip())
			if out.Err == nil || out.Err.Kind != ProviderRejected {
				t.Fatalf("outcome = %+v, want ProviderRejected", out)
			}
			if out.Err.Message != tc.wantMsg {
				t.Errorf("message = %q, want %q", out.Err.Message, tc.wantMsg)
			}
			if strings.Contains(out.Err.Message, "secret internals") ||
				strings.Contains(out.Err.Message, "bad key") {
				t.Error("upstream payload leaked into the display message")
			}
		})
	}
}

func TestWhisperNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse all connections

	c := clientFor(t, serverProvider(srv))
	out := c.Transcribe(context.Background(), longClip())
	if out.Err == nil || out.Err.Kind != NetworkFailure {
		t.Fatalf("outcome = %+v, want NetworkFailure", out)
	}
}
