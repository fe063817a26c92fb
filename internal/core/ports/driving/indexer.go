package driving

import (
	"context"

	"github.com/quarrylabs/hearth/internal/core/domain"
)

// IndexRequest describes one file upload to index.
type IndexRequest struct {
	// ScopeID groups the document (e.g., one conversation). Optional.
	ScopeID string

	// Name is the original filename. Used to select an extractor.
	Name string

	// Content is the raw file bytes.
	Content []byte
}

// Indexer ingests uploaded files into the store.
type Indexer interface {
	// Index extracts, chunks, embeds and persists one file.
	// Indexing is all-or-nothing per document: on any failure nothing
	// is persisted and the error is local to this file.
	Index(ctx context.Context, req IndexRequest) (*domain.Document, error)
}
