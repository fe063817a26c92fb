// Package memory provides an in-memory VectorStore. It backs tests and
// throwaway sessions; nothing survives process exit.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory implementation of driven.VectorStore.
// Documents and chunks keep insertion order.
type Store struct {
	mu        sync.RWMutex
	documents []domain.Document
	chunks    []domain.Chunk
	dimension int
}

// NewStore creates a new empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// InsertDocument stores a document. Idempotent by ID.
func (s *Store) InsertDocument(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.documents {
		if existing.ID == doc.ID {
			return nil
		}
	}
	s.documents = append(s.documents, doc)
	return nil
}

// AppendChunks appends chunks, enforcing the dimensionality invariant.
func (s *Store) AppendChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		if s.dimension == 0 {
			s.dimension = len(chunk.Embedding)
		} else if len(chunk.Embedding) != s.dimension {
			return fmt.Errorf("%w: chunk %s has %d dimensions, store has %d",
				domain.ErrDimensionMismatch, chunk.ID, len(chunk.Embedding), s.dimension)
		}
	}

	s.chunks = append(s.chunks, chunks...)
	return nil
}

// ListDocuments returns documents in insertion order, optionally scoped.
func (s *Store) ListDocuments(_ context.Context, scopeID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		if scopeID != "" && doc.ScopeID != scopeID {
			continue
		}
		result = append(result, doc)
	}
	return result, nil
}

// Chunks returns chunks matching the filter, in insertion order.
func (s *Store) Chunks(_ context.Context, filter driven.ChunkFilter) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Chunk
	for _, chunk := range s.chunks {
		if matchesFilter(chunk, filter) {
			result = append(result, chunk)
		}
	}
	return result, nil
}

// DeleteDocument removes a document and its chunks.
func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, doc := range s.documents {
		if doc.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.ErrNotFound
	}

	s.documents = append(s.documents[:idx], s.documents[idx+1:]...)
	s.chunks = dropChunks(s.chunks, func(c domain.Chunk) bool { return c.DocumentID == id })
	return nil
}

// ClearScope removes every document in the scope. No-op when empty.
func (s *Store) ClearScope(_ context.Context, scopeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.documents[:0]
	for _, doc := range s.documents {
		if doc.ScopeID != scopeID {
			kept = append(kept, doc)
		}
	}
	s.documents = kept
	s.chunks = dropChunks(s.chunks, func(c domain.Chunk) bool { return c.ScopeID == scopeID })
	return nil
}

// ClearAll empties the store.
func (s *Store) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = nil
	s.chunks = nil
	s.dimension = 0
	return nil
}

// Close releases resources. Nothing to release for memory.
func (s *Store) Close() error {
	return nil
}

// matchesFilter applies the scope, file and section-type filters.
// Scope filtering is absolute: a scoped filter never matches chunks of
// another scope, and matching nothing is fine.
func matchesFilter(chunk domain.Chunk, filter driven.ChunkFilter) bool {
	if filter.ScopeID != "" && chunk.ScopeID != filter.ScopeID {
		return false
	}
	if len(filter.FileIDs) > 0 && !containsString(filter.FileIDs, chunk.DocumentID) {
		return false
	}
	if len(filter.SectionTypes) > 0 && !containsType(filter.SectionTypes, chunk.SectionType) {
		return false
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsType(list []domain.SectionType, v domain.SectionType) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// dropChunks removes chunks matching the predicate, preserving order.
func dropChunks(chunks []domain.Chunk, drop func(domain.Chunk) bool) []domain.Chunk {
	kept := chunks[:0]
	for _, chunk := range chunks {
		if !drop(chunk) {
			kept = append(kept, chunk)
		}
	}
	return kept
}
