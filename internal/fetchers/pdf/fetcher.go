// Package pdf ingests PDF files, producing one entry per page.
package pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/fetchers"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Fetcher extracts page text from PDF files.
type Fetcher struct {
	conf *model.Configuration
}

// New creates a new PDF fetcher.
func New() *Fetcher {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Fetcher{conf: conf}
}

// Type returns the document type this fetcher produces.
func (f *Fetcher) Type() string {
	return domain.TypeFile
}

// CanFetch claims local .pdf paths.
func (f *Fetcher) CanFetch(source string) bool {
	if strings.Contains(source, "://") {
		return false
	}
	return strings.EqualFold(filepath.Ext(source), ".pdf")
}

// Fetch extracts text page by page. Pages with no extractable text are
// skipped; scanned PDFs without a text layer yield an error pointing at OCR.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*driven.FetchResult, error) {
	pdfCtx, err := api.ReadContextFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}
	pageCount := pdfCtx.PageCount

	rs, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer rs.Close()

	var entries []domain.Entry
	for page := 1; page <= pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		reader, err := pdfcpu.ExtractPageContent(pdfCtx, page)
		if err != nil {
			continue // page without extractable content stream
		}
		content, err := io.ReadAll(reader)
		if err != nil {
			continue
		}

		text := extractText(content)
		if text == "" {
			continue
		}
		entries = append(entries, domain.Entry{
			Text:     text,
			Start:    page,
			Location: fmt.Sprintf("Page %d", page),
		})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no text layer found (scanned PDFs need OCR)", domain.ErrInvalidInput)
	}

	return &driven.FetchResult{
		Title:   fetchers.TitleFromFilename(source),
		Entries: entries,
		Metadata: map[string]any{
			"page_count": pageCount,
			"format":     "pdf",
		},
	}, nil
}

// extractText pulls string literals shown by Tj/TJ/'/" operators out of a
// decoded content stream. Handles the common simple-encoding case; exotic
// CID-keyed fonts come out garbled and are better served by OCR.
func extractText(content []byte) string {
	var out strings.Builder
	var pending []string

	i := 0
	for i < len(content) {
		switch content[i] {
		case '(':
			literal, next := parseLiteral(content, i)
			pending = append(pending, literal)
			i = next

		case 'T':
			if i+1 < len(content) && (content[i+1] == 'j' || content[i+1] == 'J') {
				for _, lit := range pending {
					out.WriteString(lit)
				}
				if len(pending) > 0 {
					out.WriteString(" ")
				}
				pending = pending[:0]
				i += 2
				continue
			}
			// Td/TD/T* move to the next line
			if i+1 < len(content) && (content[i+1] == 'd' || content[i+1] == 'D' || content[i+1] == '*') {
				pending = pending[:0]
				i += 2
				continue
			}
			i++

		case '\'', '"':
			for _, lit := range pending {
				out.WriteString(lit)
			}
			out.WriteString("\n")
			pending = pending[:0]
			i++

		default:
			i++
		}
	}

	return strings.TrimSpace(collapseSpaces(out.String()))
}

// parseLiteral reads one PDF string literal starting at the '(' offset.
// Returns the decoded text and the offset past the closing ')'.
func parseLiteral(content []byte, start int) (string, int) {
	var sb strings.Builder
	depth := 1
	i := start + 1
	for i < len(content) && depth > 0 {
		c := content[i]
		switch c {
		case '\\':
			if i+1 < len(content) {
				switch content[i+1] {
				case 'n':
					sb.WriteByte('\n')
				case 't':
					sb.WriteByte('\t')
				case 'r', 'b', 'f':
					// Ignore
				case '(', ')', '\\':
					sb.WriteByte(content[i+1])
				default:
					sb.WriteByte(content[i+1])
				}
				i += 2
				continue
			}
			i++
		case '(':
			depth++
			sb.WriteByte(c)
			i++
		case ')':
			depth--
			if depth > 0 {
				sb.WriteByte(c)
			}
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), i
}

// collapseSpaces squeezes runs of spaces while preserving newlines.
func collapseSpaces(s string) string {
	var sb strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
		} else {
			lastSpace = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
