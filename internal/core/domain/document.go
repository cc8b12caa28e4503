package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// DocumentClass distinguishes immutable ingested content from the documents
// that grow out of it.
type DocumentClass string

const (
	// ClassSource is read-only ingested content (PDF, transcript, web page).
	ClassSource DocumentClass = "source"

	// ClassResponse is a conversation branch linked to a source document.
	ClassResponse DocumentClass = "response"

	// ClassThread is a standalone saved conversation promoted to its own
	// library entry.
	ClassThread DocumentClass = "thread"

	// ClassProduct is editable AI output (a generated analysis or summary).
	ClassProduct DocumentClass = "product"
)

// Document types produced by the ingestion fetchers.
const (
	TypeFile         = "file"
	TypeWeb          = "web"
	TypeYouTube      = "youtube"
	TypePodcast      = "podcast"
	TypeAudio        = "audio"
	TypeOCR          = "ocr"
	TypeConversation = "conversation_thread"
)

// Metadata keys with defined meaning. Everything else in Document.Metadata
// is free-form and round-trips untouched.
const (
	// MetaParentDocumentID links a response branch to its source.
	MetaParentDocumentID = "parent_document_id"

	// MetaOriginalDocumentID is the legacy spelling of the parent link.
	// Accepted on read, never written by new code.
	MetaOriginalDocumentID = "original_document_id"

	// MetaPreCreated marks a branch created ahead of its first exchange,
	// shown as "processing" until the exchange lands.
	MetaPreCreated = "pre_created"

	// MetaManuallyCreated marks a branch the user created empty on purpose.
	// Suppresses the processing indicator.
	MetaManuallyCreated = "manually_created"

	// MetaEditable marks product documents whose entries may be rewritten.
	MetaEditable = "editable"

	// MetaLastEdited records when an existing document was last re-ingested.
	MetaLastEdited = "last_edited"
)

// Document is one record in the library index. The body lives in a separate
// entries file keyed by ID; response and thread documents additionally carry
// their conversation inline.
type Document struct {
	// ID is the unique identifier. Deterministic for ingested documents
	// (see GenerateDocID), random for branches.
	ID string `json:"id"`

	// Type identifies the fetcher that produced the document.
	Type string `json:"type"`

	// Class is the document lifecycle class.
	Class DocumentClass `json:"document_class"`

	// Source is the origin identifier (file path, URL, feed URL).
	Source string `json:"source"`

	// Title is the human-readable title.
	Title string `json:"title"`

	// Fetched is when the content was ingested or the record created.
	Fetched time.Time `json:"fetched"`

	// EntryCount mirrors the length of the entries file.
	EntryCount int `json:"entry_count"`

	// Metadata contains free-form key-value pairs plus the Meta* keys above.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Thread is the conversation attached to response/thread documents.
	// Source documents never carry one.
	Thread []ThreadMessage `json:"conversation_thread,omitempty"`

	// ThreadMetadata describes the attached thread.
	ThreadMetadata *ThreadMetadata `json:"thread_metadata,omitempty"`

	// ProcessedOutputs lists saved AI analyses of this document.
	ProcessedOutputs []ProcessedOutput `json:"processed_outputs,omitempty"`
}

// Entry is one segment of a document's ingested text: a paragraph, a
// transcript line or a page.
type Entry struct {
	// Text is the segment content.
	Text string `json:"text"`

	// Start is the 1-based page or segment ordinal. Zero means absent.
	Start int `json:"start,omitempty"`

	// Location is a display label for Start (e.g. "Page 3").
	Location string `json:"location,omitempty"`

	// Timestamp is the offset for transcript entries (e.g. "12:05").
	Timestamp string `json:"timestamp,omitempty"`
}

// ProcessedOutput is the index record of a saved AI analysis. The full text
// lives in a separate output file keyed by ID.
type ProcessedOutput struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	PromptName string    `json:"prompt_name"`
	PromptText string    `json:"prompt_text"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Notes      string    `json:"notes,omitempty"`
	Preview    string    `json:"preview"`
}

// docIDLength is the hex length of deterministic document IDs.
const docIDLength = 12

// GenerateDocID derives a deterministic ID from a document's type and
// source, so re-ingesting the same source updates the existing record.
func GenerateDocID(docType, source string) string {
	sum := sha256.Sum256([]byte(docType + ":" + source))
	return hex.EncodeToString(sum[:])[:docIDLength]
}

// NewBranchID returns a random ID for a response branch. Branches of the
// same source would collide under GenerateDocID, so they get random IDs.
func NewBranchID() string {
	return uuid.New().String()
}

// ParentDocumentID returns the source this document branches from, or ""
// for documents without a parent link. Both the current and the legacy
// metadata key are honoured.
func (d *Document) ParentDocumentID() string {
	if id := d.metaString(MetaParentDocumentID); id != "" {
		return id
	}
	return d.metaString(MetaOriginalDocumentID)
}

// IsSource reports whether this is a source document: not a response,
// thread or product, and not linked to a parent.
func (d *Document) IsSource() bool {
	switch d.Class {
	case ClassResponse, ClassThread, ClassProduct:
		return false
	}
	if d.Type == TypeConversation {
		return false
	}
	return d.ParentDocumentID() == ""
}

// PreCreated reports whether the branch was created ahead of its first
// exchange.
func (d *Document) PreCreated() bool {
	return d.metaBool(MetaPreCreated)
}

// ManuallyCreated reports whether the user created the branch empty.
func (d *Document) ManuallyCreated() bool {
	return d.metaBool(MetaManuallyCreated)
}

// SetMeta sets a metadata key, allocating the map if needed.
func (d *Document) SetMeta(key string, value any) {
	if d.Metadata == nil {
		d.Metadata = make(map[string]any)
	}
	d.Metadata[key] = value
}

// metaString reads a string metadata value, tolerating absent keys.
func (d *Document) metaString(key string) string {
	if d.Metadata == nil {
		return ""
	}
	s, _ := d.Metadata[key].(string)
	return s
}

// metaBool reads a boolean metadata value, tolerating absent keys.
func (d *Document) metaBool(key string) bool {
	if d.Metadata == nil {
		return false
	}
	b, _ := d.Metadata[key].(bool)
	return b
}
