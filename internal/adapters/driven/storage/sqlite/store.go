package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docanalyser-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docanalyser-cli/internal/core/domain"
	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
)

// previewLength is how many characters of an output are kept in the index.
const previewLength = 200

// Store implements driven.LibraryStore on a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.LibraryStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docanalyser/data/library.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docanalyser", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "library.db")

	// WAL mode for concurrent readers alongside the single writer
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// AddDocument stores a document and its entries. The unique (type, source)
// index resolves re-ingestion to an update that keeps the existing ID.
func (s *Store) AddDocument(ctx context.Context, doc domain.Document, entries []domain.Entry) (string, error) {
	if doc.Type == "" || doc.Source == "" {
		return "", fmt.Errorf("%w: document needs type and source", domain.ErrInvalidInput)
	}

	var existingID string
	var existingFetched time.Time
	row := s.db.QueryRowContext(ctx,
		"SELECT id, fetched FROM documents WHERE type = ? AND source = ?", doc.Type, doc.Source)
	switch err := row.Scan(&existingID, &existingFetched); {
	case err == sql.ErrNoRows:
		if doc.ID == "" {
			doc.ID = domain.GenerateDocID(doc.Type, doc.Source)
		}
		if doc.Fetched.IsZero() {
			doc.Fetched = time.Now().UTC()
		}
	case err != nil:
		return "", fmt.Errorf("checking for existing document: %w", err)
	default:
		doc.ID = existingID
		doc.Fetched = existingFetched
		doc.SetMeta(domain.MetaLastEdited, time.Now().UTC().Format(time.RFC3339))
	}
	if doc.Class == "" {
		doc.Class = domain.ClassSource
	}
	doc.EntryCount = len(entries)

	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, type, document_class, source, title, fetched, entry_count, parent_id, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			fetched = excluded.fetched,
			entry_count = excluded.entry_count,
			parent_id = excluded.parent_id,
			metadata = excluded.metadata
	`, doc.ID, doc.Type, string(doc.Class), doc.Source, doc.Title, doc.Fetched,
		doc.EntryCount, nullString(doc.ParentDocumentID()), string(metadataJSON))
	if err != nil {
		return "", fmt.Errorf("saving document: %w", err)
	}

	if err := replaceEntries(ctx, tx, doc.ID, entries); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}
	return doc.ID, nil
}

// UpdateEntries replaces the entries of an existing document.
func (s *Store) UpdateEntries(ctx context.Context, docID string, entries []domain.Entry) error {
	doc, err := s.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	doc.SetMeta(domain.MetaLastEdited, time.Now().UTC().Format(time.RFC3339))
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		"UPDATE documents SET entry_count = ?, metadata = ? WHERE id = ?",
		len(entries), string(metadataJSON), docID)
	if err != nil {
		return fmt.Errorf("updating entry count: %w", err)
	}

	if err := replaceEntries(ctx, tx, docID, entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document record by ID.
func (s *Store) GetDocument(ctx context.Context, docID string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT d.id, d.type, d.document_class, d.source, d.title, d.fetched,
		       d.entry_count, d.metadata, d.thread, d.thread_metadata
		FROM documents d WHERE d.id = ?
	`, docID)

	doc, err := scanDocumentRow(row)
	if err != nil {
		return nil, err
	}
	if err := s.attachOutputs(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetEntries retrieves the entries of a document.
func (s *Store) GetEntries(ctx context.Context, docID string) ([]domain.Entry, error) {
	if err := s.exists(ctx, docID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT text, start, location, timestamp
		FROM entries WHERE document_id = ?
		ORDER BY position
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.Text, &e.Start, &e.Location, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

// ListDocuments returns all document records, most recently fetched first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.queryDocuments(ctx, `
		SELECT id, type, document_class, source, title, fetched,
		       entry_count, metadata, thread, thread_metadata
		FROM documents ORDER BY fetched DESC
	`)
}

// SearchDocuments returns documents whose title or source contains the
// query, case-insensitively.
func (s *Store) SearchDocuments(ctx context.Context, query string) ([]domain.Document, error) {
	needle := "%" + strings.ToLower(query) + "%"
	return s.queryDocuments(ctx, `
		SELECT id, type, document_class, source, title, fetched,
		       entry_count, metadata, thread, thread_metadata
		FROM documents
		WHERE lower(title) LIKE ? OR lower(source) LIKE ?
		ORDER BY fetched DESC
	`, needle, needle)
}

// UpdateDocument rewrites a document record. Entries and their count are
// untouched.
func (s *Store) UpdateDocument(ctx context.Context, doc domain.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET
			type = ?, document_class = ?, source = ?, title = ?,
			parent_id = ?, metadata = ?
		WHERE id = ?
	`, doc.Type, string(doc.Class), doc.Source, doc.Title,
		nullString(doc.ParentDocumentID()), string(metadataJSON), doc.ID)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteDocument removes a document record. Entries and outputs cascade.
func (s *Store) DeleteDocument(ctx context.Context, docID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", docID)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveThread attaches a conversation thread to a document, clearing the
// pre-created flag once the thread has an exchange.
func (s *Store) SaveThread(ctx context.Context, docID string, thread []domain.ThreadMessage, meta *domain.ThreadMetadata) error {
	doc, err := s.GetDocument(ctx, docID)
	if err != nil {
		return err
	}

	threadJSON, err := json.Marshal(thread)
	if err != nil {
		return fmt.Errorf("marshalling thread: %w", err)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshalling thread metadata: %w", err)
	}

	if domain.ExchangeCount(thread) > 0 && doc.Metadata != nil {
		delete(doc.Metadata, domain.MetaPreCreated)
	}
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE documents SET thread = ?, thread_metadata = ?, metadata = ? WHERE id = ?",
		string(threadJSON), string(metaJSON), string(metadataJSON), docID)
	if err != nil {
		return fmt.Errorf("saving thread: %w", err)
	}
	return nil
}

// LoadThread returns a document's thread and thread metadata.
func (s *Store) LoadThread(ctx context.Context, docID string) ([]domain.ThreadMessage, *domain.ThreadMetadata, error) {
	doc, err := s.GetDocument(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	return doc.Thread, doc.ThreadMetadata, nil
}

// ClearThread detaches the thread from a document.
func (s *Store) ClearThread(ctx context.Context, docID string) error {
	if err := s.exists(ctx, docID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE documents SET thread = NULL, thread_metadata = NULL WHERE id = ?", docID)
	if err != nil {
		return fmt.Errorf("clearing thread: %w", err)
	}
	return nil
}

// ResponseBranchesForSource returns branch summaries for every document
// whose parent link points at sourceID. The parent_id column keeps the
// lookup indexed even for large libraries.
func (s *Store) ResponseBranchesForSource(ctx context.Context, sourceID string) ([]domain.BranchInfo, error) {
	docs, err := s.queryDocuments(ctx, `
		SELECT id, type, document_class, source, title, fetched,
		       entry_count, metadata, thread, thread_metadata
		FROM documents WHERE parent_id = ?
	`, sourceID)
	if err != nil {
		return nil, err
	}

	var branches []domain.BranchInfo
	for i := range docs {
		doc := &docs[i]
		exchanges := domain.ExchangeCount(doc.Thread)
		if exchanges == 0 && !doc.PreCreated() {
			continue
		}
		lastUpdated := doc.Fetched
		if doc.ThreadMetadata != nil && !doc.ThreadMetadata.LastUpdated.IsZero() {
			lastUpdated = doc.ThreadMetadata.LastUpdated
		}
		branches = append(branches, domain.BranchInfo{
			DocID:         doc.ID,
			Title:         doc.Title,
			ExchangeCount: exchanges,
			LastUpdated:   lastUpdated,
			Processing:    doc.PreCreated() && !doc.ManuallyCreated(),
		})
	}
	sort.Slice(branches, func(i, j int) bool {
		return branches[i].LastUpdated.After(branches[j].LastUpdated)
	})
	return branches, nil
}

// AddProcessedOutput records an analysis against a document and stores its
// full text.
func (s *Store) AddProcessedOutput(ctx context.Context, docID string, output domain.ProcessedOutput, text string) (string, error) {
	if err := s.exists(ctx, docID); err != nil {
		return "", err
	}

	if output.ID == "" {
		output.ID = uuid.New().String()
	}
	if output.Timestamp.IsZero() {
		output.Timestamp = time.Now().UTC()
	}
	if output.Preview == "" {
		output.Preview = preview(text)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outputs (id, document_id, timestamp, prompt_name, prompt_text, provider, model, notes, preview, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, output.ID, docID, output.Timestamp, output.PromptName, output.PromptText,
		output.Provider, output.Model, output.Notes, output.Preview, text)
	if err != nil {
		return "", fmt.Errorf("saving output: %w", err)
	}
	return output.ID, nil
}

// LoadProcessedOutput returns the full text of a saved output.
func (s *Store) LoadProcessedOutput(ctx context.Context, outputID string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		"SELECT content FROM outputs WHERE id = ?", outputID).Scan(&content)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("loading output: %w", err)
	}
	return content, nil
}

// DeleteProcessedOutput removes one saved output.
func (s *Store) DeleteProcessedOutput(ctx context.Context, docID, outputID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM outputs WHERE id = ? AND document_id = ?", outputID, docID)
	if err != nil {
		return fmt.Errorf("deleting output: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Stats summarises the library.
func (s *Store) Stats(ctx context.Context) (*domain.LibraryStats, error) {
	stats := &domain.LibraryStats{
		ByClass: make(map[domain.DocumentClass]int),
		ByType:  make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT document_class, type, entry_count FROM documents")
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var class, docType string
		var entryCount int
		if err := rows.Scan(&class, &docType, &entryCount); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		stats.Documents++
		stats.ByClass[domain.DocumentClass(class)]++
		stats.ByType[docType]++
		stats.Entries += entryCount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM outputs").Scan(&stats.Outputs); err != nil {
		return nil, fmt.Errorf("counting outputs: %w", err)
	}
	return stats, nil
}

// exists checks that a document record is present.
func (s *Store) exists(ctx context.Context, docID string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM documents WHERE id = ?", docID).Scan(&one)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking document: %w", err)
	}
	return nil
}

// queryDocuments runs a document query and scans the rows. Outputs are not
// attached; list views only need the index columns.
func (s *Store) queryDocuments(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// attachOutputs loads a document's output index records.
func (s *Store) attachOutputs(ctx context.Context, doc *domain.Document) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, prompt_name, prompt_text, provider, model, notes, preview
		FROM outputs WHERE document_id = ?
		ORDER BY timestamp
	`, doc.ID)
	if err != nil {
		return fmt.Errorf("querying outputs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o domain.ProcessedOutput
		if err := rows.Scan(&o.ID, &o.Timestamp, &o.PromptName, &o.PromptText,
			&o.Provider, &o.Model, &o.Notes, &o.Preview); err != nil {
			return fmt.Errorf("scanning output: %w", err)
		}
		doc.ProcessedOutputs = append(doc.ProcessedOutputs, o)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating outputs: %w", err)
	}
	return nil
}

// replaceEntries rewrites a document's entries inside a transaction.
func replaceEntries(ctx context.Context, tx *sql.Tx, docID string, entries []domain.Entry) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE document_id = ?", docID); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (document_id, position, text, start, location, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, docID, i, e.Text, e.Start, e.Location, e.Timestamp); err != nil {
			return fmt.Errorf("saving entry: %w", err)
		}
	}
	return nil
}

// scanDocumentRow scans a document from *sql.Row.
func scanDocumentRow(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var class, metadataJSON string
	var threadJSON, threadMetaJSON sql.NullString

	if err := row.Scan(&doc.ID, &doc.Type, &class, &doc.Source, &doc.Title,
		&doc.Fetched, &doc.EntryCount, &metadataJSON, &threadJSON, &threadMetaJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return hydrateDocument(&doc, class, metadataJSON, threadJSON, threadMetaJSON)
}

// scanDocumentRows scans a document from *sql.Rows.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var class, metadataJSON string
	var threadJSON, threadMetaJSON sql.NullString

	if err := rows.Scan(&doc.ID, &doc.Type, &class, &doc.Source, &doc.Title,
		&doc.Fetched, &doc.EntryCount, &metadataJSON, &threadJSON, &threadMetaJSON); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return hydrateDocument(&doc, class, metadataJSON, threadJSON, threadMetaJSON)
}

// hydrateDocument unpacks the JSON columns of a scanned row.
func hydrateDocument(doc *domain.Document, class, metadataJSON string, threadJSON, threadMetaJSON sql.NullString) (*domain.Document, error) {
	doc.Class = domain.DocumentClass(class)

	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}
	if threadJSON.Valid && threadJSON.String != "" && threadJSON.String != "null" {
		if err := json.Unmarshal([]byte(threadJSON.String), &doc.Thread); err != nil {
			return nil, fmt.Errorf("unmarshalling thread: %w", err)
		}
	}
	if threadMetaJSON.Valid && threadMetaJSON.String != "" && threadMetaJSON.String != "null" {
		var meta domain.ThreadMetadata
		if err := json.Unmarshal([]byte(threadMetaJSON.String), &meta); err != nil {
			return nil, fmt.Errorf("unmarshalling thread metadata: %w", err)
		}
		doc.ThreadMetadata = &meta
	}
	return doc, nil
}

// nullString converts an empty string to a NULL for storage.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// preview truncates output text for the index record.
func preview(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= previewLength {
		return text
	}
	return text[:previewLength] + "..."
}
