// Package ocr ingests images by extracting their text. A locally installed
// tesseract binary is preferred; when absent, the configured chat provider's
// vision endpoint is used instead. With neither available the fetch fails
// with guidance.
package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers"
	"github.com/custodia-labs/docanalyser-cli/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// visionPrompt asks the model for a faithful transcription, not a summary.
const visionPrompt = "Extract all text visible in this image. " +
	"Return only the transcribed text, preserving line breaks. " +
	"If the image contains no text, reply with NO_TEXT."

// imageMediaTypes maps extensions to MIME types for the vision fallback.
var imageMediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
}

// Fetcher extracts text from image files.
type Fetcher struct {
	// chat is the vision fallback. May be nil.
	chat driven.ChatService

	// lookPath is swappable for tests.
	lookPath func(string) (string, error)

	// runTesseract is swappable for tests.
	runTesseract func(ctx context.Context, binary, imagePath string) (string, error)
}

// New creates a new OCR fetcher. chat may be nil; then only local tesseract
// is available.
func New(chat driven.ChatService) *Fetcher {
	return &Fetcher{
		chat:         chat,
		lookPath:     exec.LookPath,
		runTesseract: runTesseract,
	}
}

// Type returns the document type this fetcher produces.
func (f *Fetcher) Type() string {
	return domain.TypeOCR
}

// CanFetch claims local image paths.
func (f *Fetcher) CanFetch(source string) bool {
	if strings.Contains(source, "://") {
		return false
	}
	_, ok := imageMediaTypes[strings.ToLower(filepath.Ext(source))]
	return ok
}

// Fetch extracts the image text via tesseract or the vision fallback.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*driven.FetchResult, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	text, engine, err := f.extract(ctx, source)
	if err != nil {
		return nil, err
	}

	entries := fetchers.SegmentText(text)
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no text found in image", domain.ErrInvalidInput)
	}

	return &driven.FetchResult{
		Title:   fetchers.TitleFromFilename(source),
		Entries: entries,
		Metadata: map[string]any{
			"format":     "image",
			"ocr_engine": engine,
		},
	}, nil
}

// extract tries tesseract first, then the vision fallback.
func (f *Fetcher) extract(ctx context.Context, source string) (text, engine string, err error) {
	if binary, lookErr := f.lookPath("tesseract"); lookErr == nil {
		logger.Debug("ocr: using local tesseract at %s", binary)
		out, runErr := f.runTesseract(ctx, binary, source)
		if runErr != nil {
			return "", "", fmt.Errorf("running tesseract: %w", runErr)
		}
		return out, "tesseract", nil
	}

	if f.chat == nil {
		return "", "", fmt.Errorf("%w: tesseract not installed and no vision provider configured (run 'docanalyser doctor')",
			domain.ErrToolMissing)
	}

	logger.Debug("ocr: tesseract not found, using %s vision", f.chat.Provider())
	image, err := os.ReadFile(source)
	if err != nil {
		return "", "", fmt.Errorf("reading image: %w", err)
	}

	mediaType := imageMediaTypes[strings.ToLower(filepath.Ext(source))]
	result, err := f.chat.Vision(ctx, image, mediaType, visionPrompt, driven.ChatOptions{})
	if err != nil {
		return "", "", fmt.Errorf("vision ocr: %w", err)
	}

	reply := strings.TrimSpace(result.Text)
	if reply == "NO_TEXT" {
		reply = ""
	}
	return reply, "vision:" + string(f.chat.Provider()), nil
}

// runTesseract invokes the binary with stdout output.
func runTesseract(ctx context.Context, binary, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, imagePath, "stdout")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
