// Package audio ingests audio files by transcribing them. A locally
// installed whisper-cli binary is preferred; when absent, the OpenAI
// transcription endpoint is used if an API key is configured.
package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers"
	"github.com/custodia-labs/docanalyser-cli/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "whisper-1"

	// transcribeTimeout allows for long uploads; transcription is slow.
	transcribeTimeout = 10 * time.Minute
)

// audioExtensions this fetcher claims.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".aac":  true,
}

// whisperLine matches whisper-cli's timestamped output:
// [00:00:00.000 --> 00:00:02.480]  Hello there.
var whisperLine = regexp.MustCompile(`^\[(\d{2}):(\d{2}):(\d{2})\.\d+\s+-->.*?\]\s*(.*)$`)

// Config holds audio fetcher configuration.
type Config struct {
	// APIKey enables the OpenAI transcription fallback.
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the transcription model. Defaults to whisper-1.
	Model string
}

// Fetcher transcribes audio files into timestamped entries.
type Fetcher struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client

	// lookPath and runWhisper are swappable for tests.
	lookPath   func(string) (string, error)
	runWhisper func(ctx context.Context, binary, audioPath string) (string, error)
}

// New creates a new audio fetcher.
func New(cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Fetcher{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		client:     &http.Client{Timeout: transcribeTimeout},
		lookPath:   exec.LookPath,
		runWhisper: runWhisper,
	}
}

// Type returns the document type this fetcher produces.
func (f *Fetcher) Type() string {
	return domain.TypeAudio
}

// CanFetch claims local audio file paths.
func (f *Fetcher) CanFetch(source string) bool {
	if strings.Contains(source, "://") {
		return false
	}
	return audioExtensions[strings.ToLower(filepath.Ext(source))]
}

// Fetch transcribes the audio file.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*driven.FetchResult, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}

	entries, engine, err := f.transcribe(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no speech found in audio", domain.ErrInvalidInput)
	}

	return &driven.FetchResult{
		Title:   fetchers.TitleFromFilename(source),
		Entries: entries,
		Metadata: map[string]any{
			"format":               "audio",
			"transcription_engine": engine,
		},
	}, nil
}

// transcribe tries local whisper-cli first, then the API fallback.
func (f *Fetcher) transcribe(ctx context.Context, source string) ([]domain.Entry, string, error) {
	if binary, lookErr := f.lookPath("whisper-cli"); lookErr == nil {
		logger.Debug("audio: using local whisper at %s", binary)
		out, err := f.runWhisper(ctx, binary, source)
		if err != nil {
			return nil, "", fmt.Errorf("running whisper: %w", err)
		}
		return parseWhisperOutput(out), "whisper-cli", nil
	}

	if f.apiKey == "" {
		return nil, "", fmt.Errorf("%w: whisper-cli not installed and no OpenAI key configured (run 'docanalyser doctor')",
			domain.ErrToolMissing)
	}

	logger.Debug("audio: whisper-cli not found, using transcription API")
	entries, err := f.apiTranscribe(ctx, source)
	if err != nil {
		return nil, "", err
	}
	return entries, "openai:" + f.model, nil
}

// runWhisper invokes whisper-cli with timestamped stdout output.
func runWhisper(ctx context.Context, binary, audioPath string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, "-f", audioPath)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// parseWhisperOutput converts whisper-cli's line format into entries.
// Lines without a timestamp prefix are treated as plain text.
func parseWhisperOutput(out string) []domain.Entry {
	var entries []domain.Entry
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if matches := whisperLine.FindStringSubmatch(line); matches != nil {
			text := strings.TrimSpace(matches[4])
			if text == "" {
				continue
			}
			entries = append(entries, domain.Entry{
				Text:      text,
				Start:     len(entries) + 1,
				Timestamp: clockTimestamp(matches[1], matches[2], matches[3]),
			})
			continue
		}

		entries = append(entries, domain.Entry{Text: line, Start: len(entries) + 1})
	}
	return entries
}

// clockTimestamp renders hh:mm:ss as mm:ss below the hour.
func clockTimestamp(h, m, s string) string {
	if h == "00" {
		return strings.TrimPrefix(m, "0") + ":" + s
	}
	return strings.TrimLeft(h, "0") + ":" + m + ":" + s
}

// transcriptionResponse is the verbose_json payload subset we use.
type transcriptionResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		Text  string  `json:"text"`
	} `json:"segments"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// apiTranscribe uploads the file to the transcription endpoint.
func (f *Fetcher) apiTranscribe(ctx context.Context, source string) ([]domain.Entry, error) {
	audio, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(source))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := writer.WriteField("model", f.model); err != nil {
		return nil, err
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var payload transcriptionResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("transcription error: %s", payload.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription request: HTTP %d", resp.StatusCode)
	}

	if len(payload.Segments) > 0 {
		entries := make([]domain.Entry, 0, len(payload.Segments))
		for _, seg := range payload.Segments {
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}
			entries = append(entries, domain.Entry{
				Text:      text,
				Start:     len(entries) + 1,
				Timestamp: formatOffset(seg.Start),
			})
		}
		return entries, nil
	}

	return fetchers.SegmentText(payload.Text), nil
}

// formatOffset renders seconds as mm:ss or h:mm:ss.
func formatOffset(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
