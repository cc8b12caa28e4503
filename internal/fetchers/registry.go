package fetchers

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.FetcherRegistry = (*Registry)(nil)

// Registry routes a source string to the first registered fetcher that
// claims it.
type Registry struct {
	mu       sync.RWMutex
	fetchers []driven.Fetcher
}

// NewRegistry creates an empty fetcher registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a fetcher. Order matters: specific fetchers first.
func (r *Registry) Register(f driven.Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers = append(r.fetchers, f)
}

// Resolve returns the first fetcher claiming the source.
func (r *Registry) Resolve(source string) (driven.Fetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.fetchers {
		if f.CanFetch(source) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, source)
}

// Types lists the registered fetcher types, in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.fetchers))
	seen := make(map[string]bool)
	for _, f := range r.fetchers {
		if !seen[f.Type()] {
			types = append(types, f.Type())
			seen[f.Type()] = true
		}
	}
	return types
}
