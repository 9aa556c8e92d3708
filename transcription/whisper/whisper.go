// Package whisper implements transcription.Provider against a faster-whisper
// HTTP sidecar that streams newline-delimited JSON.
package whisper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/skillsenselab/audtext/transcription"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	defaultWhisperURL   = "http://localhost:8387"
	defaultWhisperModel = "base"
	defaultHealthWait   = 5 * time.Second

	maxLineBytes = 1024 * 1024
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	URL      string `mapstructure:"url" json:"url"`
	Model    string `mapstructure:"model" json:"model"`
	Language string `mapstructure:"language" json:"language,omitempty"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultWhisperURL
	}
	if c.Model == "" {
		c.Model = defaultWhisperModel
	}
}

// Provider implements transcription.Provider using a faster-whisper HTTP sidecar.
type Provider struct {
	cfg Config
	// No client-level timeout: transcription responses stream for as long
	// as the audio takes. Cancellation comes from the request context.
	client *http.Client
}

// NewProvider creates a new Whisper transcription provider.
func NewProvider(cfg Config) *Provider {
	cfg.ApplyDefaults()
	return &Provider{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultHealthWait)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Transcribe uploads the audio content and returns a stream over the
// sidecar's NDJSON response. The first line carries language and duration
// metadata and is consumed before returning; subsequent segment lines are
// surfaced through the stream's iterator.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Stream, error) {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	filename := req.Filename
	if filename == "" {
		filename = "audio"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, req.Audio); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	_ = writer.WriteField("model", model)
	if lang != "" {
		_ = writer.WriteField("language", lang)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("whisper error (status %d): %s", resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	info, err := readInfoLine(scanner)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}

	return &transcription.Stream{
		Language: info.Language,
		Duration: info.Duration,
		Segments: &segmentIterator{body: resp.Body, scanner: scanner},
	}, nil
}

// --- sidecar NDJSON wire types ---

type wireLine struct {
	Type     string  `json:"type"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Start    float64 `json:"start,omitempty"`
	End      float64 `json:"end,omitempty"`
	Text     string  `json:"text,omitempty"`
	Error    string  `json:"error,omitempty"`
}

func readInfoLine(scanner *bufio.Scanner) (*wireLine, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read whisper stream: %w", err)
		}
		return nil, fmt.Errorf("whisper stream closed before info line")
	}

	var line wireLine
	if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
		return nil, fmt.Errorf("decode whisper info line: %w", err)
	}
	switch line.Type {
	case "info":
		return &line, nil
	case "error":
		return nil, fmt.Errorf("whisper: %s", line.Error)
	default:
		return nil, fmt.Errorf("whisper: unexpected first line type %q", line.Type)
	}
}

// segmentIterator decodes segment lines from the response body until a
// terminal "done" or "error" line.
type segmentIterator struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

func (it *segmentIterator) Next(ctx context.Context) (transcription.Segment, bool, error) {
	var zero transcription.Segment
	if it.done {
		return zero, false, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	for it.scanner.Scan() {
		var line wireLine
		if err := json.Unmarshal(it.scanner.Bytes(), &line); err != nil {
			return zero, false, fmt.Errorf("decode whisper segment line: %w", err)
		}
		switch line.Type {
		case "segment":
			return transcription.Segment{Start: line.Start, End: line.End, Text: line.Text}, true, nil
		case "done":
			it.done = true
			return zero, false, nil
		case "error":
			return zero, false, fmt.Errorf("whisper: %s", line.Error)
		default:
			// Skip lines added by newer sidecar versions.
		}
	}

	if err := it.scanner.Err(); err != nil {
		return zero, false, fmt.Errorf("read whisper stream: %w", err)
	}
	it.done = true
	return zero, false, nil
}

func (it *segmentIterator) Close() error {
	return it.body.Close()
}

// compile-time check
var _ transcription.Provider = (*Provider)(nil)
