package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
)

// stubChat is a canned ChatService. Answer and Err control the outcome;
// Calls records every message list sent.
type stubChat struct {
	Answer string
	Err    error
	Calls  [][]domain.ThreadMessage
}

func (c *stubChat) Chat(_ context.Context, messages []domain.ThreadMessage, _ driven.ChatOptions) (*driven.ChatResult, error) {
	c.Calls = append(c.Calls, messages)
	if c.Err != nil {
		return nil, c.Err
	}
	return &driven.ChatResult{
		Text:          c.Answer,
		InputTokens:   100,
		OutputTokens:  50,
		EstimatedCost: 0.0015,
	}, nil
}

func (c *stubChat) Vision(context.Context, []byte, string, string, driven.ChatOptions) (*driven.ChatResult, error) {
	return nil, domain.ErrNotImplemented
}

func (c *stubChat) Provider() domain.AIProvider { return domain.AIProviderOpenAI }

func (c *stubChat) ModelName() string { return "gpt-4o-mini" }

func (c *stubChat) Ping(context.Context) error { return nil }

func (c *stubChat) Close() error { return nil }

// stubEmbedding embeds text as a fixed-size bag of marker words, so tests
// get deterministic, meaningfully ranked vectors.
type stubEmbedding struct {
	Err error
}

var markerWords = []string{"alpha", "beta", "gamma", "delta"}

func (e *stubEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	vec := make([]float32, len(markerWords))
	lower := strings.ToLower(text)
	for i, word := range markerWords {
		vec[i] = float32(strings.Count(lower, word))
	}
	return vec, nil
}

func (e *stubEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *stubEmbedding) Dimensions() int { return len(markerWords) }

func (e *stubEmbedding) ModelName() string { return "text-embedding-3-small" }

func (e *stubEmbedding) Ping(context.Context) error { return nil }

func (e *stubEmbedding) Close() error { return nil }

// stubPrompts serves templates from a map.
type stubPrompts struct {
	templates map[string]string
}

func newStubPrompts() *stubPrompts {
	return &stubPrompts{templates: map[string]string{
		driven.PromptChatSystem: "You are reading this document:\n%s",
		driven.PromptSummary:    "Summarise:\n%s",
		driven.PromptKeyPoints:  "Key points of:\n%s",
	}}
}

func (p *stubPrompts) Load(name string) (string, error) {
	template, ok := p.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: prompt %s", domain.ErrNotFound, name)
	}
	return template, nil
}

func (p *stubPrompts) Names() []string {
	names := make([]string, 0, len(p.templates))
	for name := range p.templates {
		names = append(names, name)
	}
	return names
}

func (p *stubPrompts) Reload() {}

func (p *stubPrompts) Dir() string { return "" }

// memCostLog collects records in memory.
type memCostLog struct {
	mu      sync.Mutex
	records []driven.CostRecord
}

func (l *memCostLog) Append(_ context.Context, rec driven.CostRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return nil
}

func (l *memCostLog) Records(context.Context) ([]driven.CostRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]driven.CostRecord{}, l.records...), nil
}

func (l *memCostLog) Summary(ctx context.Context) (*driven.CostSummary, error) {
	records, _ := l.Records(ctx)
	summary := &driven.CostSummary{
		ByProvider: make(map[string]float64),
		ByModel:    make(map[string]float64),
	}
	for _, rec := range records {
		summary.Total += rec.Cost
		summary.ByProvider[rec.Provider] += rec.Cost
		summary.ByModel[rec.Model] += rec.Cost
		summary.Calls++
	}
	return summary, nil
}

// memIndex is an in-memory EmbeddingIndex.
type memIndex struct {
	mu       sync.Mutex
	chunks   map[string][]domain.Chunk
	provider string
	model    string
}

func newMemIndex() *memIndex {
	return &memIndex{chunks: make(map[string][]domain.Chunk)}
}

func (i *memIndex) AddDocumentChunks(_ context.Context, docID string, chunks []domain.Chunk) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.chunks[docID] = chunks
	return nil
}

func (i *memIndex) GetDocumentChunks(_ context.Context, docID string) ([]domain.Chunk, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	chunks, ok := i.chunks[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return chunks, nil
}

func (i *memIndex) HasDocument(_ context.Context, docID string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.chunks[docID]
	return ok, nil
}

func (i *memIndex) RemoveDocument(_ context.Context, docID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.chunks, docID)
	return nil
}

func (i *memIndex) AllChunks(context.Context) ([]domain.Chunk, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var all []domain.Chunk
	for docID, chunks := range i.chunks {
		for _, chunk := range chunks {
			chunk.DocID = docID
			all = append(all, chunk)
		}
	}
	return all, nil
}

func (i *memIndex) Stats(context.Context) (int, int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	chunks := 0
	for _, c := range i.chunks {
		chunks += len(c)
	}
	return len(i.chunks), chunks, nil
}

func (i *memIndex) SetModel(_ context.Context, provider, model string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.provider = provider
	i.model = model
	return nil
}

func (i *memIndex) Model(context.Context) (string, string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.provider, i.model, nil
}

func (i *memIndex) Close() error { return nil }

// stubSourceFetcher claims any source with its prefix and yields fixed text.
type stubSourceFetcher struct {
	docType string
	prefix  string
	title   string
	text    string
	err     error
}

func (f *stubSourceFetcher) Type() string { return f.docType }

func (f *stubSourceFetcher) CanFetch(source string) bool {
	return strings.HasPrefix(source, f.prefix)
}

func (f *stubSourceFetcher) Fetch(context.Context, string) (*driven.FetchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &driven.FetchResult{
		Title:   f.title,
		Entries: []domain.Entry{{Text: f.text, Start: 1}},
	}, nil
}
