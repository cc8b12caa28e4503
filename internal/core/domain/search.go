package domain

// SearchResult is one semantic search hit: the best-matching chunk of a
// document.
type SearchResult struct {
	// DocID is the matching document.
	DocID string

	// Title is the document title.
	Title string

	// Position is the position of the best-matching chunk.
	Position int

	// Snippet is the text of the best-matching chunk.
	Snippet string

	// Score is the cosine similarity of the best-matching chunk.
	Score float64

	// ChunkMatches counts how many of the document's chunks landed in the
	// candidate set.
	ChunkMatches int
}
