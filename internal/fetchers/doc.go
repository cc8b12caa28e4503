// Package fetchers provides the ingestion adapters that turn a source
// reference (file path, URL) into library entries, and the registry that
// routes a source to the fetcher claiming it.
//
// Fetchers are registered at startup; registration order matters because
// the registry returns the first fetcher whose CanFetch accepts the source.
// URL-specific fetchers (youtube, podcast) register before the generic web
// fetcher, and format-specific file fetchers (pdf, docx, ocr, audio) before
// the plain file one.
package fetchers
