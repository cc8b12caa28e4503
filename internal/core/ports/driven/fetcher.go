package driven

import (
	"context"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// Fetcher ingests one kind of source (local file, web page, YouTube video,
// podcast episode, image, audio) and reshapes it into library entries.
// Each fetcher is a thin wrapper over an external tool, library or HTTP API;
// failures surface as returned errors with no retry.
type Fetcher interface {
	// Type returns the document type this fetcher produces.
	Type() string

	// CanFetch reports whether this fetcher claims the given source
	// (by URL shape, file extension or MIME sniffing).
	CanFetch(source string) bool

	// Fetch retrieves the source and returns its entries.
	Fetch(ctx context.Context, source string) (*FetchResult, error)
}

// FetchResult is the output of ingestion, handed to the library store.
type FetchResult struct {
	// Title is the extracted document title.
	Title string

	// Entries are the text segments, in document order.
	Entries []domain.Entry

	// Metadata contains fetcher-specific key-value pairs (author,
	// publication date, channel, episode, duration).
	Metadata map[string]any
}

// FetcherRegistry routes a source string to the fetcher that claims it.
type FetcherRegistry interface {
	// Register adds a fetcher. Fetchers are consulted in registration
	// order; specific URL fetchers register before the generic file one.
	Register(f Fetcher)

	// Resolve returns the first fetcher claiming the source, or
	// domain.ErrUnsupportedSource.
	Resolve(source string) (Fetcher, error)

	// Types lists the registered fetcher types.
	Types() []string
}
