// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - LibraryStore: document, thread and output persistence
//   - Fetcher: produces entries from one kind of source
//   - FetcherRegistry: routes a source to the fetcher that claims it
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ChatService: provider chat/vision calls. Without it, conversation
//     and analysis features are disabled.
//   - EmbeddingService: generates vector embeddings. Without it, semantic
//     search is disabled.
//   - EmbeddingIndex: chunk vector persistence. Disabled alongside
//     EmbeddingService.
//   - CostLog: per-call cost records. Without it, costs are not tracked.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or fetcher package
package driven
