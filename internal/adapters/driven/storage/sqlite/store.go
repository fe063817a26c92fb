package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/quarrylabs/hearth/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.VectorStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.hearth/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".hearth", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	// foreign_keys goes in the DSN so every pooled connection enforces
	// the chunk cascade, not just the first.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
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

// InsertDocument stores a document. Idempotent by ID.
func (s *Store) InsertDocument(ctx context.Context, doc domain.Document) error {
	authorsJSON, err := json.Marshal(doc.Authors)
	if err != nil {
		return fmt.Errorf("marshalling authors: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents
			(id, scope_id, name, document_type, byte_size, page_count, authors, chunk_count, uploaded_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM documents))
		ON CONFLICT(id) DO NOTHING
	`, doc.ID, doc.ScopeID, doc.Name, string(doc.Type), doc.ByteSize, doc.PageCount,
		string(authorsJSON), doc.ChunkCount, doc.UploadedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// AppendChunks appends chunks in a single transaction, enforcing the
// dimensionality invariant before any row is written.
func (s *Store) AppendChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	dimension, err := s.dimension(ctx)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		if dimension == 0 {
			dimension = len(chunk.Embedding)
		} else if len(chunk.Embedding) != dimension {
			return fmt.Errorf("%w: chunk %s has %d dimensions, store has %d",
				domain.ErrDimensionMismatch, chunk.ID, len(chunk.Embedding), dimension)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks
			(id, document_id, scope_id, content, embedding, heading_path, section_type, page_number, authors, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM chunks))
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		pathJSON, err := json.Marshal(chunk.HeadingPath)
		if err != nil {
			return fmt.Errorf("marshalling heading path: %w", err)
		}
		authorsJSON, err := json.Marshal(chunk.Authors)
		if err != nil {
			return fmt.Errorf("marshalling chunk authors: %w", err)
		}

		var pageNumber sql.NullInt64
		if chunk.PageNumber != nil {
			pageNumber = sql.NullInt64{Int64: int64(*chunk.PageNumber), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.ScopeID,
			chunk.Text, float32SliceToBytes(chunk.Embedding), string(pathJSON),
			string(chunk.SectionType), pageNumber, string(authorsJSON)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// dimension returns the store's established embedding length, 0 when no
// embedded chunk exists yet.
func (s *Store) dimension(ctx context.Context) (int, error) {
	var bytes sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT length(embedding) FROM chunks
		WHERE embedding IS NOT NULL AND length(embedding) > 0
		LIMIT 1
	`).Scan(&bytes)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying embedding dimension: %w", err)
	}
	return int(bytes.Int64) / 4, nil
}

// ListDocuments returns documents in insertion order, optionally scoped.
func (s *Store) ListDocuments(ctx context.Context, scopeID string) ([]domain.Document, error) {
	query := `
		SELECT id, scope_id, name, document_type, byte_size, page_count, authors, chunk_count, uploaded_at
		FROM documents
	`
	var args []any
	if scopeID != "" {
		query += " WHERE scope_id = ?"
		args = append(args, scopeID)
	}
	query += " ORDER BY position"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		var docType string
		var authorsJSON sql.NullString
		if err := rows.Scan(&doc.ID, &doc.ScopeID, &doc.Name, &docType, &doc.ByteSize,
			&doc.PageCount, &authorsJSON, &doc.ChunkCount, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Type = domain.DocumentType(docType)
		if err := unmarshalStrings(authorsJSON, &doc.Authors); err != nil {
			return nil, fmt.Errorf("unmarshalling authors: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// Chunks returns chunks matching the filter, in insertion order.
func (s *Store) Chunks(ctx context.Context, filter driven.ChunkFilter) ([]domain.Chunk, error) {
	query := `
		SELECT id, document_id, scope_id, content, embedding, heading_path, section_type, page_number, authors
		FROM chunks
	`
	var clauses []string
	var args []any
	if filter.ScopeID != "" {
		clauses = append(clauses, "scope_id = ?")
		args = append(args, filter.ScopeID)
	}
	if len(filter.FileIDs) > 0 {
		clauses = append(clauses, "document_id IN ("+placeholders(len(filter.FileIDs))+")")
		for _, id := range filter.FileIDs {
			args = append(args, id)
		}
	}
	if len(filter.SectionTypes) > 0 {
		clauses = append(clauses, "section_type IN ("+placeholders(len(filter.SectionTypes))+")")
		for _, t := range filter.SectionTypes {
			args = append(args, string(t))
		}
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY position"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := []domain.Chunk{}
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		var pathJSON, sectionType string
		var pageNumber sql.NullInt64
		var authorsJSON sql.NullString
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.ScopeID, &chunk.Text,
			&embeddingBlob, &pathJSON, &sectionType, &pageNumber, &authorsJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		chunk.SectionType = domain.SectionType(sectionType)
		if err := json.Unmarshal([]byte(pathJSON), &chunk.HeadingPath); err != nil {
			return nil, fmt.Errorf("unmarshalling heading path: %w", err)
		}
		if pageNumber.Valid {
			page := int(pageNumber.Int64)
			chunk.PageNumber = &page
		}
		if err := unmarshalStrings(authorsJSON, &chunk.Authors); err != nil {
			return nil, fmt.Errorf("unmarshalling chunk authors: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// DeleteDocument removes a document; its chunks go with it via the
// foreign key cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearScope removes every document in the scope. No-op when empty.
func (s *Store) ClearScope(ctx context.Context, scopeID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE scope_id = ?", scopeID)
	if err != nil {
		return fmt.Errorf("clearing scope: %w", err)
	}
	return nil
}

// ClearAll empties the store.
func (s *Store) ClearAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents")
	if err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// unmarshalStrings decodes a nullable JSON string array column.
func unmarshalStrings(col sql.NullString, dst *[]string) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
