package driven

import (
	"context"

	"github.com/quarrylabs/hearth/internal/core/domain"
)

// ChunkFilter restricts which chunks a VectorStore read returns.
// The zero value matches every chunk.
type ChunkFilter struct {
	// ScopeID, when non-empty, matches only chunks of that scope.
	// There is no fallback to all chunks when the scope matches nothing.
	ScopeID string

	// FileIDs, when non-empty, matches only chunks of those documents.
	FileIDs []string

	// SectionTypes, when non-empty, matches only those section types.
	SectionTypes []domain.SectionType
}

// VectorStore is the durable collection of documents and chunks.
//
// After any successful mutating call returns, a subsequent read from the
// same process observes the mutation. Implementations serialise writers;
// reads never observe a half-written store.
type VectorStore interface {
	// InsertDocument stores a document. Idempotent by ID: inserting an
	// existing ID is a no-op.
	InsertDocument(ctx context.Context, doc domain.Document) error

	// AppendChunks appends chunks without deduplication. Returns
	// domain.ErrDimensionMismatch if an embedding's length differs from
	// the store's established dimensionality.
	AppendChunks(ctx context.Context, chunks []domain.Chunk) error

	// ListDocuments returns all documents, filtered by scope when
	// scopeID is non-empty. Insertion order.
	ListDocuments(ctx context.Context, scopeID string) ([]domain.Document, error)

	// Chunks returns the chunks matching the filter, in insertion order.
	Chunks(ctx context.Context, filter ChunkFilter) ([]domain.Chunk, error)

	// DeleteDocument removes a document and all its chunks. Returns
	// domain.ErrNotFound if the ID does not exist.
	DeleteDocument(ctx context.Context, id string) error

	// ClearScope removes every document (and its chunks) in the scope.
	// Matching nothing is a no-op, not an error.
	ClearScope(ctx context.Context, scopeID string) error

	// ClearAll empties the store.
	ClearAll(ctx context.Context) error

	// Close releases resources.
	Close() error
}
