// Package file ingests plain text and markdown files from the local
// filesystem.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// extensions this fetcher claims. Binary formats have their own fetchers.
var extensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".text":     true,
	".log":      true,
}

// Fetcher reads text files and segments them into paragraph entries.
type Fetcher struct{}

// New creates a new file fetcher.
func New() *Fetcher {
	return &Fetcher{}
}

// Type returns the document type this fetcher produces.
func (f *Fetcher) Type() string {
	return domain.TypeFile
}

// CanFetch claims local paths with a known text extension.
func (f *Fetcher) CanFetch(source string) bool {
	if strings.Contains(source, "://") {
		return false
	}
	return extensions[strings.ToLower(filepath.Ext(source))]
}

// Fetch reads the file and splits it into paragraph entries.
func (f *Fetcher) Fetch(_ context.Context, source string) (*driven.FetchResult, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	entries := fetchers.SegmentText(string(data))
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: file contains no text", domain.ErrInvalidInput)
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	return &driven.FetchResult{
		Title:   fetchers.TitleFromFilename(source),
		Entries: entries,
		Metadata: map[string]any{
			"file_size":     info.Size(),
			"file_modified": info.ModTime().UTC().Format("2006-01-02T15:04:05Z"),
			"extension":     strings.ToLower(filepath.Ext(source)),
		},
	}, nil
}
