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

// Ensure ConversationService implements the interface.
var _ driving.ConversationService = (*ConversationService)(nil)

// ConversationService runs the branching conversation model. Questions
// asked about a source document land in response branches; the source
// itself never carries a thread.
type ConversationService struct {
	store   driven.LibraryStore
	chat    driven.ChatService
	prompts driven.PromptStore
	costLog driven.CostLog
}

// NewConversationService creates a new conversation service.
// chat and costLog are optional (can be nil); without chat, Ask fails with
// domain.ErrChatUnavailable.
func NewConversationService(
	store driven.LibraryStore,
	chat driven.ChatService,
	prompts driven.PromptStore,
	costLog driven.CostLog,
) *ConversationService {
	return &ConversationService{
		store:   store,
		chat:    chat,
		prompts: prompts,
		costLog: costLog,
	}
}

// Ask sends a question about a document and appends the exchange to every
// branch in the plan. New branches are created pre-created before the
// provider call so they show as processing while it is in flight.
func (s *ConversationService) Ask(
	ctx context.Context, docID, question string, plan domain.BranchPlan, opts driving.AskOptions,
) (*driving.AskResult, error) {
	if s.chat == nil {
		return nil, domain.ErrChatUnavailable
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	doc, err := s.store.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}

	source, history, err := s.resolveContext(ctx, doc)
	if err != nil {
		return nil, err
	}

	// Existing destinations must be branches of this source.
	for _, branchID := range plan.ExistingBranches {
		branch, err := s.store.GetDocument(ctx, branchID)
		if err != nil {
			return nil, fmt.Errorf("destination branch %s: %w", branchID, err)
		}
		if branch.ParentDocumentID() != source.ID {
			return nil, fmt.Errorf("%w: %s is not a branch of %s", domain.ErrInvalidInput, branchID, source.ID)
		}
	}

	// Pre-create new branches so they are visible as processing.
	newBranchIDs := make([]string, 0, len(plan.NewBranches))
	for _, title := range plan.NewBranches {
		branchID, err := s.createBranch(ctx, source, title, false)
		if err != nil {
			return nil, err
		}
		newBranchIDs = append(newBranchIDs, branchID)
	}

	answer, err := s.askProvider(ctx, source, history, question, opts)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	exchange := []domain.ThreadMessage{
		{Role: domain.RoleUser, Content: question, Timestamp: now},
		{
			Role:      domain.RoleAssistant,
			Content:   answer.Text,
			Provider:  string(s.chat.Provider()),
			Model:     s.chat.ModelName(),
			Timestamp: now,
		},
	}

	branchIDs := append(append([]string{}, plan.ExistingBranches...), newBranchIDs...)
	for _, branchID := range branchIDs {
		if err := s.appendExchange(ctx, branchID, exchange); err != nil {
			return nil, fmt.Errorf("saving to branch %s: %w", branchID, err)
		}
	}

	s.logCost(ctx, source.Title, opts.PromptName, answer)

	active := ""
	if !plan.StayInCurrentView {
		active = branchIDs[len(branchIDs)-1]
	}

	return &driving.AskResult{
		Answer:         answer.Text,
		BranchIDs:      branchIDs,
		ActiveBranchID: active,
		EstimatedCost:  answer.EstimatedCost,
	}, nil
}

// Branches returns the response branches of a source document.
func (s *ConversationService) Branches(ctx context.Context, sourceID string) ([]domain.BranchInfo, error) {
	if _, err := s.store.GetDocument(ctx, sourceID); err != nil {
		return nil, err
	}
	return s.store.ResponseBranchesForSource(ctx, sourceID)
}

// CreateBranch creates an empty, manually created branch.
func (s *ConversationService) CreateBranch(ctx context.Context, sourceID, title string) (string, error) {
	doc, err := s.store.GetDocument(ctx, sourceID)
	if err != nil {
		return "", err
	}
	if !doc.IsSource() {
		return "", fmt.Errorf("%w: branches attach to source documents", domain.ErrInvalidInput)
	}
	return s.createBranch(ctx, doc, title, true)
}

// Thread returns the conversation messages of a branch, system messages
// excluded.
func (s *ConversationService) Thread(ctx context.Context, branchID string) ([]domain.ThreadMessage, error) {
	thread, _, err := s.store.LoadThread(ctx, branchID)
	if err != nil {
		return nil, err
	}
	visible := make([]domain.ThreadMessage, 0, len(thread))
	for _, msg := range thread {
		if msg.Role == domain.RoleSystem {
			continue
		}
		visible = append(visible, msg)
	}
	return visible, nil
}

// PromoteThread saves a branch's conversation as a standalone [Thread]
// document and returns the new document ID.
func (s *ConversationService) PromoteThread(ctx context.Context, branchID string) (string, error) {
	branch, err := s.store.GetDocument(ctx, branchID)
	if err != nil {
		return "", err
	}

	thread, meta, err := s.store.LoadThread(ctx, branchID)
	if err != nil {
		return "", err
	}
	if len(thread) == 0 {
		return "", fmt.Errorf("%w: branch has no conversation to save", domain.ErrInvalidInput)
	}

	entries := make([]domain.Entry, 0, len(thread))
	for i, msg := range thread {
		entries = append(entries, domain.Entry{
			Text:  fmt.Sprintf("%s: %s", strings.ToUpper(msg.Role), msg.Content),
			Start: i + 1,
		})
	}

	newID := domain.NewBranchID()
	doc := domain.Document{
		ID:             newID,
		Type:           domain.TypeConversation,
		Class:          domain.ClassThread,
		Source:         "thread:" + newID,
		Title:          "[Thread] " + branch.Title,
		Fetched:        time.Now().UTC(),
		Thread:         thread,
		ThreadMetadata: meta,
	}

	if _, err := s.store.AddDocument(ctx, doc, entries); err != nil {
		return "", fmt.Errorf("saving thread document: %w", err)
	}

	logger.Info("promoted thread of %s to document %s", branchID, newID)
	return newID, nil
}

// DeleteBranch removes a response branch.
func (s *ConversationService) DeleteBranch(ctx context.Context, branchID string) error {
	doc, err := s.store.GetDocument(ctx, branchID)
	if err != nil {
		return err
	}
	if doc.ParentDocumentID() == "" {
		return fmt.Errorf("%w: %s is not a response branch", domain.ErrInvalidInput, branchID)
	}
	return s.store.DeleteDocument(ctx, branchID)
}

// resolveContext returns the source document providing the conversation
// context and, when docID is itself a branch, its thread as history.
func (s *ConversationService) resolveContext(
	ctx context.Context, doc *domain.Document,
) (*domain.Document, []domain.ThreadMessage, error) {
	parentID := doc.ParentDocumentID()
	if parentID == "" {
		return doc, nil, nil
	}

	source, err := s.store.GetDocument(ctx, parentID)
	if err != nil {
		return nil, nil, fmt.Errorf("parent document %s: %w", parentID, err)
	}

	history, _, err := s.store.LoadThread(ctx, doc.ID)
	if err != nil {
		return nil, nil, err
	}
	return source, history, nil
}

// askProvider assembles the message list and calls the chat provider.
func (s *ConversationService) askProvider(
	ctx context.Context,
	source *domain.Document,
	history []domain.ThreadMessage,
	question string,
	opts driving.AskOptions,
) (*driven.ChatResult, error) {
	system := opts.SystemPrompt
	if system == "" {
		template, err := s.prompts.Load(driven.PromptChatSystem)
		if err != nil {
			return nil, fmt.Errorf("loading system prompt: %w", err)
		}
		content, err := s.sourceContent(ctx, source.ID)
		if err != nil {
			return nil, err
		}
		system = fmt.Sprintf(template, content)
	}

	messages := make([]domain.ThreadMessage, 0, len(history)+2)
	messages = append(messages, domain.ThreadMessage{Role: domain.RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, domain.ThreadMessage{Role: domain.RoleUser, Content: question})

	logger.Debug("asking %s/%s with %d messages", s.chat.Provider(), s.chat.ModelName(), len(messages))
	return s.chat.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
}

// sourceContent joins the source entries for the system prompt.
func (s *ConversationService) sourceContent(ctx context.Context, sourceID string) (string, error) {
	entries, err := s.store.GetEntries(ctx, sourceID)
	if err != nil {
		return "", fmt.Errorf("loading source entries: %w", err)
	}
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, entry.Text)
	}
	return strings.Join(parts, "\n\n"), nil
}

// createBranch stores a new response branch of source. Branches carry
// pre_created until their first exchange lands; manual ones additionally
// suppress the processing indicator.
func (s *ConversationService) createBranch(
	ctx context.Context, source *domain.Document, title string, manual bool,
) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		branches, err := s.store.ResponseBranchesForSource(ctx, source.ID)
		if err != nil {
			return "", err
		}
		title = fmt.Sprintf("Re: %s (%d)", source.Title, len(branches)+1)
	}

	branchID := domain.NewBranchID()
	branch := domain.Document{
		ID:      branchID,
		Type:    source.Type,
		Class:   domain.ClassResponse,
		Source:  "branch:" + branchID,
		Title:   title,
		Fetched: time.Now().UTC(),
	}
	branch.SetMeta(domain.MetaParentDocumentID, source.ID)
	branch.SetMeta(domain.MetaPreCreated, true)
	if manual {
		branch.SetMeta(domain.MetaManuallyCreated, true)
	}

	id, err := s.store.AddDocument(ctx, branch, nil)
	if err != nil {
		return "", fmt.Errorf("creating branch: %w", err)
	}
	return id, nil
}

// appendExchange loads a branch thread, appends the exchange and saves it
// back with refreshed metadata.
func (s *ConversationService) appendExchange(
	ctx context.Context, branchID string, exchange []domain.ThreadMessage,
) error {
	thread, _, err := s.store.LoadThread(ctx, branchID)
	if err != nil {
		return err
	}
	thread = append(thread, exchange...)

	assistant := exchange[len(exchange)-1]
	meta := &domain.ThreadMetadata{
		Provider:     assistant.Provider,
		Model:        assistant.Model,
		MessageCount: domain.ExchangeCount(thread),
		LastUpdated:  time.Now().UTC(),
	}
	return s.store.SaveThread(ctx, branchID, thread, meta)
}

// logCost best-effort appends the call to the cost log.
func (s *ConversationService) logCost(
	ctx context.Context, docTitle, promptName string, result *driven.ChatResult,
) {
	if s.costLog == nil {
		return
	}
	err := s.costLog.Append(ctx, driven.CostRecord{
		Provider:      string(s.chat.Provider()),
		Model:         s.chat.ModelName(),
		InputTokens:   result.InputTokens,
		OutputTokens:  result.OutputTokens,
		Cost:          result.EstimatedCost,
		DocumentTitle: docTitle,
		PromptName:    promptName,
	})
	if err != nil {
		logger.Warn("cost log append failed: %v", err)
	}
}
