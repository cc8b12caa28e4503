package fetchers

import (
	"strings"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// maxSegmentChars caps the length of one entry. Longer paragraphs are split
// on sentence boundaries so a single wall of text does not become one huge
// entry.
const maxSegmentChars = 4000

// SegmentText splits raw text into entries on blank lines. Consecutive
// non-blank lines form one paragraph entry; oversized paragraphs are split
// further. Start numbers the entries from 1.
func SegmentText(text string) []domain.Entry {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		paragraphs = append(paragraphs, splitOversized(para)...)
	}

	entries := make([]domain.Entry, 0, len(paragraphs))
	for i, para := range paragraphs {
		entries = append(entries, domain.Entry{
			Text:  para,
			Start: i + 1,
		})
	}
	return entries
}

// splitOversized breaks a paragraph exceeding maxSegmentChars on sentence
// ends, falling back to a hard cut when no boundary is found.
func splitOversized(para string) []string {
	if len(para) <= maxSegmentChars {
		return []string{para}
	}

	var parts []string
	for len(para) > maxSegmentChars {
		cut := strings.LastIndexAny(para[:maxSegmentChars], ".!?")
		if cut < maxSegmentChars/2 {
			cut = maxSegmentChars - 1
		}
		parts = append(parts, strings.TrimSpace(para[:cut+1]))
		para = strings.TrimSpace(para[cut+1:])
	}
	if para != "" {
		parts = append(parts, para)
	}
	return parts
}

// TitleFromFilename derives a display title from a file path: base name
// without extension, underscores and hyphens replaced by spaces.
func TitleFromFilename(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}
