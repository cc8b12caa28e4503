package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docanalyser-cli/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// AnalysisService runs one-shot AI analyses over a document and stores the
// result as a processed output.
type AnalysisService struct {
	store   driven.LibraryStore
	chat    driven.ChatService
	prompts driven.PromptStore
	costLog driven.CostLog
}

// NewAnalysisService creates a new analysis service.
// chat and costLog are optional (can be nil).
func NewAnalysisService(
	store driven.LibraryStore,
	chat driven.ChatService,
	prompts driven.PromptStore,
	costLog driven.CostLog,
) *AnalysisService {
	return &AnalysisService{
		store:   store,
		chat:    chat,
		prompts: prompts,
		costLog: costLog,
	}
}

// Analyse sends the document content with the given prompt and saves the
// reply as a processed output. promptText overrides the named template;
// with both empty the "summary" template is used.
func (s *AnalysisService) Analyse(
	ctx context.Context, docID, promptName, promptText string, opts driving.AskOptions,
) (*domain.ProcessedOutput, error) {
	if s.chat == nil {
		return nil, domain.ErrChatUnavailable
	}

	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.GetEntries(ctx, docID)
	if err != nil {
		return nil, err
	}
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, entry.Text)
	}
	content := strings.Join(parts, "\n\n")
	if content == "" {
		return nil, fmt.Errorf("%w: document has no text to analyse", domain.ErrInvalidInput)
	}

	if promptName == "" && promptText == "" {
		promptName = driven.PromptSummary
	}
	prompt := promptText
	if prompt == "" {
		template, err := s.prompts.Load(promptName)
		if err != nil {
			return nil, fmt.Errorf("loading prompt %q: %w", promptName, err)
		}
		prompt = fmt.Sprintf(template, content)
	} else {
		prompt = promptText + "\n\nDocument:\n" + content
	}

	logger.Section("Analysis")
	logger.Debug("analysing %s with prompt %q", docID, promptName)

	messages := []domain.ThreadMessage{{Role: domain.RoleUser, Content: prompt}}
	result, err := s.chat.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis call: %w", err)
	}

	output := domain.ProcessedOutput{
		Timestamp:  time.Now().UTC(),
		PromptName: promptName,
		PromptText: promptText,
		Provider:   string(s.chat.Provider()),
		Model:      s.chat.ModelName(),
	}
	outputID, err := s.store.AddProcessedOutput(ctx, docID, output, result.Text)
	if err != nil {
		return nil, fmt.Errorf("saving output: %w", err)
	}
	output.ID = outputID

	if s.costLog != nil {
		logName := promptName
		if logName == "" {
			logName = "custom"
		}
		err := s.costLog.Append(ctx, driven.CostRecord{
			Provider:      string(s.chat.Provider()),
			Model:         s.chat.ModelName(),
			InputTokens:   result.InputTokens,
			OutputTokens:  result.OutputTokens,
			Cost:          result.EstimatedCost,
			DocumentTitle: doc.Title,
			PromptName:    logName,
		})
		if err != nil {
			logger.Warn("cost log append failed: %v", err)
		}
	}

	return &output, nil
}

// Outputs lists the saved outputs of a document.
func (s *AnalysisService) Outputs(ctx context.Context, docID string) ([]domain.ProcessedOutput, error) {
	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	return doc.ProcessedOutputs, nil
}

// OutputText returns the full text of a saved output.
func (s *AnalysisService) OutputText(ctx context.Context, outputID string) (string, error) {
	return s.store.LoadProcessedOutput(ctx, outputID)
}

// DeleteOutput removes one saved output.
func (s *AnalysisService) DeleteOutput(ctx context.Context, docID, outputID string) error {
	return s.store.DeleteProcessedOutput(ctx, docID, outputID)
}
