// Package docx ingests Word documents by unzipping the OOXML package and
// extracting paragraph text from word/document.xml.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Fetcher extracts paragraph entries from DOCX files.
type Fetcher struct{}

// New creates a new DOCX fetcher.
func New() *Fetcher {
	return &Fetcher{}
}

// Type returns the document type this fetcher produces.
func (f *Fetcher) Type() string {
	return domain.TypeFile
}

// CanFetch claims local .docx paths.
func (f *Fetcher) CanFetch(source string) bool {
	if strings.Contains(source, "://") {
		return false
	}
	return strings.EqualFold(filepath.Ext(source), ".docx")
}

// Fetch unzips the document and returns one entry per paragraph.
func (f *Fetcher) Fetch(_ context.Context, source string) (*driven.FetchResult, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading docx: %w", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive", domain.ErrInvalidInput)
	}

	paragraphs, err := extractParagraphs(reader)
	if err != nil {
		return nil, err
	}
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("%w: document contains no text", domain.ErrInvalidInput)
	}

	entries := make([]domain.Entry, 0, len(paragraphs))
	for i, para := range paragraphs {
		entries = append(entries, domain.Entry{
			Text:  para,
			Start: i + 1,
		})
	}

	title := extractTitle(reader)
	if title == "" {
		title = fetchers.TitleFromFilename(source)
	}

	return &driven.FetchResult{
		Title:   title,
		Entries: entries,
		Metadata: map[string]any{
			"format":          "docx",
			"paragraph_count": len(paragraphs),
		},
	}, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// extractParagraphs pulls non-empty paragraph text from word/document.xml.
func extractParagraphs(reader *zip.Reader) ([]string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, domain.ErrInvalidInput
		}

		var doc documentXML
		if err := xml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("%w: malformed document.xml", domain.ErrInvalidInput)
		}

		var paragraphs []string
		for _, para := range doc.Body.Paragraphs {
			var sb strings.Builder
			for _, r := range para.Runs {
				for _, text := range r.Text {
					sb.WriteString(text.Content)
				}
			}
			if trimmed := strings.TrimSpace(sb.String()); trimmed != "" {
				paragraphs = append(paragraphs, trimmed)
			}
		}
		return paragraphs, nil
	}
	return nil, nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads the document title from docProps/core.xml, if present.
func extractTitle(reader *zip.Reader) string {
	for _, file := range reader.File {
		if file.Name != "docProps/core.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return ""
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return ""
		}

		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil {
			return strings.TrimSpace(core.Title)
		}
		return ""
	}
	return ""
}
