// Package jsonfile provides a file-backed VectorStore persisted as a
// single JSON document. The corpus is small enough that whole-file
// rewrite-on-write is the consistency model; writers serialise on an
// in-process lock and every write goes to a temp file first so a crash
// mid-write never leaves a syntactically invalid store.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
	"github.com/quarrylabs/hearth/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultFileName is the store file created under the data directory.
const DefaultFileName = "index.json"

// Store is a JSON-file-backed implementation of driven.VectorStore.
type Store struct {
	mu   sync.RWMutex
	path string
	data storeFile
}

// storeFile is the on-disk layout: two ordered collections matching the
// data model field-for-field.
type storeFile struct {
	Documents []documentRecord `json:"documents"`
	Chunks    []chunkRecord    `json:"chunks"`
}

type documentRecord struct {
	ID         string    `json:"id"`
	ScopeID    string    `json:"scopeId,omitempty"`
	Name       string    `json:"name"`
	Type       string    `json:"documentType"`
	ByteSize   int64     `json:"byteSize"`
	PageCount  int       `json:"pageCount,omitempty"`
	Authors    []string  `json:"authors,omitempty"`
	ChunkCount int       `json:"chunkCount"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type chunkRecord struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"documentId"`
	ScopeID     string    `json:"scopeId,omitempty"`
	Text        string    `json:"text"`
	Embedding   []float32 `json:"embedding"`
	HeadingPath []string  `json:"headingPath"`
	SectionType string    `json:"sectionType"`
	PageNumber  *int      `json:"pageNumber,omitempty"`
	Authors     []string  `json:"authors,omitempty"`
}

// NewStore opens (or creates) the store file under dataDir.
// If dataDir is empty, defaults to ~/.hearth/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".hearth", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{path: filepath.Join(dataDir, DefaultFileName)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the store file into memory. A missing file is an empty
// store; a malformed file or a broken dimensionality invariant is an
// open-time error.
func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading store file: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return fmt.Errorf("parsing store file %s: %w", s.path, err)
	}

	dimension := 0
	for _, chunk := range s.data.Chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		if dimension == 0 {
			dimension = len(chunk.Embedding)
		} else if len(chunk.Embedding) != dimension {
			return fmt.Errorf("%w: store file %s mixes %d and %d dimensional embeddings",
				domain.ErrDimensionMismatch, s.path, dimension, len(chunk.Embedding))
		}
	}

	logger.Debug("Loaded store: %d documents, %d chunks", len(s.data.Documents), len(s.data.Chunks))
	return nil
}

// persist writes the whole store to a temp file and renames it into
// place. Callers must hold the write lock.
func (s *Store) persist() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), DefaultFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp store file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}

// InsertDocument stores a document. Idempotent by ID.
func (s *Store) InsertDocument(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data.Documents {
		if existing.ID == doc.ID {
			return nil
		}
	}
	s.data.Documents = append(s.data.Documents, toDocumentRecord(doc))
	return s.persist()
}

// AppendChunks appends chunks, enforcing the dimensionality invariant.
func (s *Store) AppendChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dimension := s.dimensionLocked()
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

	for _, chunk := range chunks {
		s.data.Chunks = append(s.data.Chunks, toChunkRecord(chunk))
	}
	return s.persist()
}

// dimensionLocked returns the store's established embedding length.
func (s *Store) dimensionLocked() int {
	for _, chunk := range s.data.Chunks {
		if len(chunk.Embedding) > 0 {
			return len(chunk.Embedding)
		}
	}
	return 0
}

// ListDocuments returns documents in insertion order, optionally scoped.
func (s *Store) ListDocuments(_ context.Context, scopeID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Document, 0, len(s.data.Documents))
	for _, record := range s.data.Documents {
		if scopeID != "" && record.ScopeID != scopeID {
			continue
		}
		result = append(result, fromDocumentRecord(record))
	}
	return result, nil
}

// Chunks returns chunks matching the filter, in insertion order.
func (s *Store) Chunks(_ context.Context, filter driven.ChunkFilter) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fileIDs := toSet(filter.FileIDs)
	sectionTypes := make(map[string]bool, len(filter.SectionTypes))
	for _, t := range filter.SectionTypes {
		sectionTypes[string(t)] = true
	}

	var result []domain.Chunk
	for _, record := range s.data.Chunks {
		if filter.ScopeID != "" && record.ScopeID != filter.ScopeID {
			continue
		}
		if len(fileIDs) > 0 && !fileIDs[record.DocumentID] {
			continue
		}
		if len(sectionTypes) > 0 && !sectionTypes[record.SectionType] {
			continue
		}
		result = append(result, fromChunkRecord(record))
	}
	return result, nil
}

// DeleteDocument removes a document and its chunks in one rewrite.
func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, record := range s.data.Documents {
		if record.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.ErrNotFound
	}

	s.data.Documents = append(s.data.Documents[:idx], s.data.Documents[idx+1:]...)
	kept := s.data.Chunks[:0]
	for _, record := range s.data.Chunks {
		if record.DocumentID != id {
			kept = append(kept, record)
		}
	}
	s.data.Chunks = kept
	return s.persist()
}

// ClearScope removes every document in the scope. No-op when empty.
func (s *Store) ClearScope(_ context.Context, scopeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keptDocs := s.data.Documents[:0]
	removed := 0
	for _, record := range s.data.Documents {
		if record.ScopeID == scopeID {
			removed++
			continue
		}
		keptDocs = append(keptDocs, record)
	}
	if removed == 0 {
		return nil
	}
	s.data.Documents = keptDocs

	keptChunks := s.data.Chunks[:0]
	for _, record := range s.data.Chunks {
		if record.ScopeID != scopeID {
			keptChunks = append(keptChunks, record)
		}
	}
	s.data.Chunks = keptChunks
	return s.persist()
}

// ClearAll empties the store.
func (s *Store) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = storeFile{}
	return s.persist()
}

// Close releases resources. The store holds no open handles between
// operations.
func (s *Store) Close() error {
	return nil
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, item := range list {
		set[item] = true
	}
	return set
}

func toDocumentRecord(doc domain.Document) documentRecord {
	return documentRecord{
		ID:         doc.ID,
		ScopeID:    doc.ScopeID,
		Name:       doc.Name,
		Type:       string(doc.Type),
		ByteSize:   doc.ByteSize,
		PageCount:  doc.PageCount,
		Authors:    doc.Authors,
		ChunkCount: doc.ChunkCount,
		UploadedAt: doc.UploadedAt,
	}
}

func fromDocumentRecord(record documentRecord) domain.Document {
	return domain.Document{
		ID:         record.ID,
		ScopeID:    record.ScopeID,
		Name:       record.Name,
		Type:       domain.DocumentType(record.Type),
		ByteSize:   record.ByteSize,
		PageCount:  record.PageCount,
		Authors:    record.Authors,
		ChunkCount: record.ChunkCount,
		UploadedAt: record.UploadedAt,
	}
}

func toChunkRecord(chunk domain.Chunk) chunkRecord {
	return chunkRecord{
		ID:          chunk.ID,
		DocumentID:  chunk.DocumentID,
		ScopeID:     chunk.ScopeID,
		Text:        chunk.Text,
		Embedding:   chunk.Embedding,
		HeadingPath: chunk.HeadingPath,
		SectionType: string(chunk.SectionType),
		PageNumber:  chunk.PageNumber,
		Authors:     chunk.Authors,
	}
}

func fromChunkRecord(record chunkRecord) domain.Chunk {
	return domain.Chunk{
		ID:          record.ID,
		DocumentID:  record.DocumentID,
		ScopeID:     record.ScopeID,
		Text:        record.Text,
		Embedding:   record.Embedding,
		HeadingPath: record.HeadingPath,
		SectionType: domain.SectionType(record.SectionType),
		PageNumber:  record.PageNumber,
		Authors:     record.Authors,
	}
}
