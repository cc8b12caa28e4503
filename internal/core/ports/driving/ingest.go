package driving

import "context"

// IngestReport describes the outcome of one ingestion.
type IngestReport struct {
	// DocID is the library record the content landed in.
	DocID string

	// Title and Type echo the stored record.
	Title string
	Type  string

	// EntryCount is the number of entries produced.
	EntryCount int

	// Updated is true when an existing record was refreshed rather than
	// a new one created.
	Updated bool

	// EmbeddingQueued is true when background embedding generation was
	// started for the document.
	EmbeddingQueued bool
}

// IngestService turns a source (file path, URL, feed) into a source
// document in the library.
type IngestService interface {
	// Ingest fetches the source with the fetcher that claims it and
	// stores the result. Re-ingesting the same source updates the
	// existing document.
	Ingest(ctx context.Context, source string) (*IngestReport, error)

	// SupportedTypes lists the registered fetcher types.
	SupportedTypes() []string
}
