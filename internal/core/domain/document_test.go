package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGenerateDocID_Deterministic tests that the same type/source pair
// always produces the same ID
func TestGenerateDocID_Deterministic(t *testing.T) {
	a := GenerateDocID(TypeFile, "/home/user/report.pdf")
	b := GenerateDocID(TypeFile, "/home/user/report.pdf")

	assert.Equal(t, a, b)
	assert.Len(t, a, 12)
}

// TestGenerateDocID_DistinguishesTypeAndSource tests ID separation
func TestGenerateDocID_DistinguishesTypeAndSource(t *testing.T) {
	assert.NotEqual(t,
		GenerateDocID(TypeFile, "/home/user/report.pdf"),
		GenerateDocID(TypeWeb, "/home/user/report.pdf"))
	assert.NotEqual(t,
		GenerateDocID(TypeWeb, "https://example.com/a"),
		GenerateDocID(TypeWeb, "https://example.com/b"))
}

// TestNewBranchID_Unique tests that branch IDs never collide
func TestNewBranchID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewBranchID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

// TestDocument_ParentDocumentID tests both parent link spellings
func TestDocument_ParentDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		want     string
	}{
		{
			name:     "current key",
			metadata: map[string]any{MetaParentDocumentID: "src-1"},
			want:     "src-1",
		},
		{
			name:     "legacy key",
			metadata: map[string]any{MetaOriginalDocumentID: "src-2"},
			want:     "src-2",
		},
		{
			name: "current key wins over legacy",
			metadata: map[string]any{
				MetaParentDocumentID:   "src-1",
				MetaOriginalDocumentID: "src-2",
			},
			want: "src-1",
		},
		{
			name:     "no parent",
			metadata: nil,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{Metadata: tt.metadata}
			assert.Equal(t, tt.want, doc.ParentDocumentID())
		})
	}
}

// TestDocument_IsSource tests the source document invariant
func TestDocument_IsSource(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want bool
	}{
		{
			name: "plain ingested document",
			doc:  Document{Type: TypeFile, Class: ClassSource},
			want: true,
		},
		{
			name: "response class",
			doc:  Document{Type: TypeFile, Class: ClassResponse},
			want: false,
		},
		{
			name: "thread class",
			doc:  Document{Type: TypeConversation, Class: ClassThread},
			want: false,
		},
		{
			name: "product class",
			doc:  Document{Type: TypeFile, Class: ClassProduct},
			want: false,
		},
		{
			name: "conversation type without class",
			doc:  Document{Type: TypeConversation},
			want: false,
		},
		{
			name: "parent link overrides class",
			doc: Document{
				Type:     TypeFile,
				Class:    ClassSource,
				Metadata: map[string]any{MetaParentDocumentID: "src-1"},
			},
			want: false,
		},
		{
			name: "legacy parent link overrides class",
			doc: Document{
				Type:     TypeFile,
				Class:    ClassSource,
				Metadata: map[string]any{MetaOriginalDocumentID: "src-1"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.IsSource())
		})
	}
}

// TestDocument_SetMeta tests metadata mutation with a nil map
func TestDocument_SetMeta(t *testing.T) {
	var doc Document
	doc.SetMeta(MetaPreCreated, true)

	assert.True(t, doc.PreCreated())
	assert.False(t, doc.ManuallyCreated())
}
