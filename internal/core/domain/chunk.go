package domain

import (
	"math"
	"strings"
)

// Default chunking parameters, in words. Word-boundary chunks keep
// embeddings coherent across entry boundaries.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// Chunk is one embeddable slice of a document's text.
type Chunk struct {
	// DocID links to the owning document.
	DocID string `json:"doc_id,omitempty"`

	// Position is the ordinal position within the document.
	Position int `json:"position"`

	// Text is the chunk content.
	Text string `json:"text"`

	// Embedding is the vector representation, populated once embedded.
	Embedding []float32 `json:"embedding,omitempty"`
}

// ChunkText splits text into word-boundary chunks of chunkSize words with
// overlap words shared between neighbours. Non-positive arguments fall back
// to the defaults; overlap is clamped below chunkSize.
func ChunkText(text string, chunkSize, overlap int) []Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := chunkSize - overlap
	chunks := make([]Chunk, 0, len(words)/step+1)

	position := 0
	for start := 0; start < len(words); start += step {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, Chunk{
			Position: position,
			Text:     strings.Join(words[start:end], " "),
		})
		position++

		if end == len(words) {
			break
		}
	}

	return chunks
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
