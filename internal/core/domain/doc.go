// Package domain contains the core business entities and rules for the
// DocAnalyser library: documents, entries, conversation threads and the
// branching model that links response threads back to their sources.
// It has no dependencies on adapters or infrastructure.
package domain
