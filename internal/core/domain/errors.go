package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
//
// Note: a scope-filtered query that matches nothing is NOT an error.
// A freshly created scope with no uploads is a normal state and
// retrieval returns an empty result for it.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionFailed indicates the extraction collaborator could not
	// produce usable text. Indexing aborts for that file and no partial
	// document or chunks are persisted.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmbeddingUnavailable indicates the embedding provider is
	// unreachable or returned a malformed response. At index time this
	// aborts the whole document; at query time callers should degrade
	// to "no context" rather than fail the conversation.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates a chunk embedding whose length
	// differs from the embeddings already in the store.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrUnsupportedType indicates a file format no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")
)
