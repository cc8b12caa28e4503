package driving

import "context"

// ExportFormat selects an export rendering.
type ExportFormat string

// Available export formats.
const (
	ExportText     ExportFormat = "text"
	ExportMarkdown ExportFormat = "markdown"
	ExportHTML     ExportFormat = "html"
)

// ExportService renders documents and threads for use outside the library.
type ExportService interface {
	// ExportDocument renders a document's entries in the given format.
	ExportDocument(ctx context.Context, docID string, format ExportFormat) (string, error)

	// ExportThread renders a document's conversation thread in the given
	// format.
	ExportThread(ctx context.Context, docID string, format ExportFormat) (string, error)
}
