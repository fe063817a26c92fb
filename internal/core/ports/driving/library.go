package driving

import (
	"context"

	"github.com/quarrylabs/hearth/internal/core/domain"
)

// Library manages the lifecycle of indexed documents.
type Library interface {
	// List returns documents, filtered by scope when scopeID is non-empty.
	List(ctx context.Context, scopeID string) ([]domain.Document, error)

	// Delete removes a document and its chunks by ID.
	// Returns domain.ErrNotFound if the ID does not exist.
	Delete(ctx context.Context, id string) error

	// ClearScope removes every document in the scope. No-op when empty.
	ClearScope(ctx context.Context, scopeID string) error

	// ClearAll empties the store.
	ClearAll(ctx context.Context) error
}
