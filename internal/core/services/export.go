package services

import (
	"bytes"
	"context"
	"fmt"
	stdhtml "html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService renders documents and threads for use outside the library.
// HTML output goes through a markdown pass, so provider replies written in
// markdown render as they were meant to.
type ExportService struct {
	store driven.LibraryStore
	md    goldmark.Markdown
}

// NewExportService creates a new export service.
func NewExportService(store driven.LibraryStore) *ExportService {
	return &ExportService{
		store: store,
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// ExportDocument renders a document's entries in the given format.
func (s *ExportService) ExportDocument(ctx context.Context, docID string, format driving.ExportFormat) (string, error) {
	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return "", err
	}
	entries, err := s.store.GetEntries(ctx, docID)
	if err != nil {
		return "", err
	}

	switch format {
	case driving.ExportText:
		return documentText(doc, entries), nil
	case driving.ExportMarkdown:
		return documentMarkdown(doc, entries), nil
	case driving.ExportHTML:
		return s.renderHTML(doc.Title, documentMarkdown(doc, entries))
	default:
		return "", fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, format)
	}
}

// ExportThread renders a document's conversation thread in the given format.
func (s *ExportService) ExportThread(ctx context.Context, docID string, format driving.ExportFormat) (string, error) {
	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return "", err
	}
	thread, _, err := s.store.LoadThread(ctx, docID)
	if err != nil {
		return "", err
	}
	if len(thread) == 0 {
		return "", fmt.Errorf("%w: document has no conversation thread", domain.ErrInvalidInput)
	}

	switch format {
	case driving.ExportText:
		return domain.FormatThreadAsText(thread), nil
	case driving.ExportMarkdown:
		return threadMarkdown(doc, thread), nil
	case driving.ExportHTML:
		return s.renderHTML(doc.Title, threadMarkdown(doc, thread))
	default:
		return "", fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, format)
	}
}

// renderHTML converts markdown to a minimal standalone HTML page.
func (s *ExportService) renderHTML(title, markdown string) (string, error) {
	var body bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", stdhtml.EscapeString(title))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

func documentText(doc *domain.Document, entries []domain.Entry) string {
	var b strings.Builder
	b.WriteString(doc.Title + "\n")
	b.WriteString(strings.Repeat("=", len(doc.Title)) + "\n\n")
	fmt.Fprintf(&b, "Source: %s\n", doc.Source)
	fmt.Fprintf(&b, "Fetched: %s\n\n", doc.Fetched.Format("2006-01-02 15:04"))

	for _, entry := range entries {
		b.WriteString(entryPrefix(entry) + entry.Text + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func documentMarkdown(doc *domain.Document, entries []domain.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "**Source:** %s  \n", doc.Source)
	fmt.Fprintf(&b, "**Fetched:** %s\n\n", doc.Fetched.Format("2006-01-02 15:04"))

	for _, entry := range entries {
		if entry.Location != "" {
			fmt.Fprintf(&b, "## %s\n\n", entry.Location)
			b.WriteString(entry.Text + "\n\n")
			continue
		}
		b.WriteString(entryPrefix(entry) + entry.Text + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func threadMarkdown(doc *domain.Document, thread []domain.ThreadMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)

	for _, msg := range thread {
		label := "Assistant"
		if msg.Role == domain.RoleUser {
			label = "You"
		}
		if msg.Model != "" {
			label += " (" + msg.Model + ")"
		}
		fmt.Fprintf(&b, "## %s\n\n", label)
		b.WriteString(msg.Content + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// entryPrefix labels transcript entries with their timestamp.
func entryPrefix(entry domain.Entry) string {
	if entry.Timestamp != "" {
		return "[" + entry.Timestamp + "] "
	}
	return ""
}
