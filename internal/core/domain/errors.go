package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedSource indicates no fetcher can handle the given source.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrSourceImmutable indicates an attempt to attach a thread to a source
	// document. Source documents stay clean; threads belong to response
	// branches created via the conversation service.
	ErrSourceImmutable = errors.New("source document is read-only")

	// ErrNoDestination indicates a branch plan with no target branches.
	ErrNoDestination = errors.New("no destination branch selected")

	// ErrChatUnavailable indicates no chat provider is configured.
	// Conversation features are disabled without one.
	ErrChatUnavailable = errors.New("chat provider unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrToolMissing indicates a required external tool is not installed.
	// The dependent feature degrades; doctor reports install guidance.
	ErrToolMissing = errors.New("external tool missing")
)
