package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"murmur/audio"
)

// httpError carries a non-success provider response. The body is kept for
// boundary logging only; callers see just the status.
type httpError struct {
	Status int
	Body   []byte
}

func (e *httpError) Error() string {
	return fmt.Sprintf("provider returned status %d", e.Status)
}

// Whisper is the shared shape of the whisper-style transcription
// endpoints: one multipart POST with file, model and language fields.
type Whisper struct {
	name   string
	apiURL string
	model  string
	client *TracedClient
}

func (w *Whisper) Name() string { return w.name }

// Warm pre-opens the TLS connection; called once at startup.
func (w *Whisper) Warm() { go w.client.WarmConnection(w.apiURL) }

type whisperResponse struct {
	Text string `json:"text"`
}

func (w *Whisper) Transcribe(ctx context.Context, clip audio.Clip, lang, apiKey string) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+clip.Format)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(clip.Data); err != nil {
		return nil, err
	}

	writer.WriteField("model", w.model)
	writer.WriteField("response_format", "json")
	if lang != "" {
		writer.WriteField("language", lang)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", w.apiURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, &httpError{Status: resp.StatusCode, Body: resp.Body}
	}

	var wResp whisperResponse
	if err := json.Unmarshal(resp.Body, &wResp); err != nil {
		return nil, fmt.Errorf("%s response parse error: %w", w.name, err)
	}
	return &Result{Text: wResp.Text, Metrics: resp.Metrics}, nil
}

func NewOpenAI() *Whisper {
	return &Whisper{
		name:   "openai",
		apiURL: "https://api.openai.com/v1/audio/transcriptions",
		model:  "whisper-1",
		client: NewTracedClient(),
	}
}

func NewGroq() *Whisper {
	return &Whisper{
		name:   "groq",
		apiURL: "https://api.groq.com/openai/v1/audio/transcriptions",
		model:  "whisper-large-v3-turbo",
		client: NewTracedClient(),
	}
}
