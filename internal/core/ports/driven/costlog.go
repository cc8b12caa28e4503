package driven

import (
	"context"
	"time"
)

// CostRecord is one logged AI call.
type CostRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	InputTokens   int       `json:"input_tokens"`
	OutputTokens  int       `json:"output_tokens"`
	Cost          float64   `json:"cost"`
	DocumentTitle string    `json:"document_title,omitempty"`
	PromptName    string    `json:"prompt_name,omitempty"`
}

// CostSummary aggregates logged costs.
type CostSummary struct {
	Total      float64            `json:"total"`
	ByProvider map[string]float64 `json:"by_provider"`
	ByModel    map[string]float64 `json:"by_model"`
	Calls      int                `json:"calls"`
}

// CostLog records the estimated cost of every AI call.
// This is an optional service - when nil, costs are not tracked.
type CostLog interface {
	// Append adds one record.
	Append(ctx context.Context, rec CostRecord) error

	// Records returns all logged records, oldest first.
	Records(ctx context.Context) ([]CostRecord, error)

	// Summary aggregates all records.
	Summary(ctx context.Context) (*CostSummary, error)
}
