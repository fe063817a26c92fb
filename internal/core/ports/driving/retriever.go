package driving

import (
	"context"

	"github.com/quarrylabs/hearth/internal/core/domain"
)

// Retriever answers retrieval queries over the indexed corpus.
type Retriever interface {
	// Retrieve returns the diverse top chunks for the request.
	// A scope that matches nothing yields an empty slice, not an error.
	Retrieve(ctx context.Context, req domain.RetrieveRequest) ([]domain.ScoredChunk, error)

	// BuildContext retrieves and packs chunks into a bounded prompt
	// context ready for a generation provider. Returns the packed text
	// and the chunks it cites.
	BuildContext(ctx context.Context, req domain.RetrieveRequest, charBudget int) (string, []domain.ScoredChunk, error)
}
