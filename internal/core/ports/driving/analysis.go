package driving

import (
	"context"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
)

// AnalysisService runs one-shot AI analyses over a document and stores the
// result as a processed output.
type AnalysisService interface {
	// Analyse sends the document content with the given prompt and saves
	// the reply as a processed output of the document.
	Analyse(ctx context.Context, docID, promptName, promptText string, opts AskOptions) (*domain.ProcessedOutput, error)

	// Outputs lists the saved outputs of a document.
	Outputs(ctx context.Context, docID string) ([]domain.ProcessedOutput, error)

	// OutputText returns the full text of a saved output.
	OutputText(ctx context.Context, outputID string) (string, error)

	// DeleteOutput removes one saved output.
	DeleteOutput(ctx context.Context, docID, outputID string) error
}
