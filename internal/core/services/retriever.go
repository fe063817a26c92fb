package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
	"github.com/quarrylabs/hearth/internal/core/ports/driving"
	"github.com/quarrylabs/hearth/internal/logger"
	"github.com/quarrylabs/hearth/internal/prompt"
	"github.com/quarrylabs/hearth/internal/rank"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

// Tunables are the retrieval parameters that may be reloaded at runtime
// (e.g., when the config file changes).
type Tunables struct {
	// Lambda is the MMR relevance/diversity trade-off in [0, 1].
	Lambda float64

	// CandidatePool bounds the similarity candidates re-ranked by MMR.
	CandidatePool int

	// Weights are the section-type relevance weights.
	Weights map[domain.SectionType]float64
}

// DefaultTunables returns the standard retrieval parameters.
func DefaultTunables() Tunables {
	return Tunables{
		Lambda:        rank.DefaultLambda,
		CandidatePool: rank.DefaultPool,
		Weights:       rank.DefaultWeights(),
	}
}

// RetrieverService answers retrieval queries: embed the query, rank the
// eligible chunks by cosine similarity, re-rank for diversity.
// Retrieval never mutates the store, so queries may run concurrently
// and an abandoned in-flight query cannot corrupt state.
type RetrieverService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService

	mu       sync.RWMutex
	tunables Tunables
}

// NewRetrieverService creates a new retriever with default tunables.
func NewRetrieverService(store driven.VectorStore, embedder driven.EmbeddingService) *RetrieverService {
	return &RetrieverService{
		store:    store,
		embedder: embedder,
		tunables: DefaultTunables(),
	}
}

// SetTunables swaps the retrieval parameters. Safe to call while
// queries are in flight; each query reads one consistent snapshot.
func (s *RetrieverService) SetTunables(t Tunables) {
	if t.Lambda < 0 || t.Lambda > 1 {
		t.Lambda = rank.DefaultLambda
	}
	if t.CandidatePool <= 0 {
		t.CandidatePool = rank.DefaultPool
	}
	if t.Weights == nil {
		t.Weights = rank.DefaultWeights()
	}

	s.mu.Lock()
	s.tunables = t
	s.mu.Unlock()
	logger.Info("Retrieval tunables updated: lambda=%.2f pool=%d", t.Lambda, t.CandidatePool)
}

// snapshot returns the current tunables.
func (s *RetrieverService) snapshot() Tunables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tunables
}

// Retrieve returns the diverse top chunks for the request.
func (s *RetrieverService) Retrieve(ctx context.Context, req domain.RetrieveRequest) ([]domain.ScoredChunk, error) {
	logger.Section("Retrieval")
	req.Normalise()
	logger.Debug("Query: %q (scope %q, topK %d, cap %d)", req.Query, req.ScopeID, req.TopK, req.PerSectionCap)

	if strings.TrimSpace(req.Query) == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.ScoredChunk{}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := s.store.Chunks(ctx, driven.ChunkFilter{
		ScopeID:      req.ScopeID,
		FileIDs:      req.FileIDs,
		SectionTypes: req.SectionTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	logger.Debug("Eligible chunks: %d", len(chunks))

	// An empty scope is a normal state, not an error.
	if len(chunks) == 0 {
		return []domain.ScoredChunk{}, nil
	}

	t := s.snapshot()
	candidates := rank.Rank(chunks, queryVec, t.CandidatePool)
	logger.Debug("Similarity candidates: %d", len(candidates))

	selector := rank.NewSelector(
		rank.WithLambda(t.Lambda),
		rank.WithPerSectionCap(req.PerSectionCap),
		rank.WithWeights(t.Weights),
	)
	selected := selector.Select(candidates, req.TopK)
	logger.Info("Selected %d/%d chunks", len(selected), req.TopK)

	return selected, nil
}

// BuildContext retrieves and packs chunks into a bounded prompt context.
func (s *RetrieverService) BuildContext(
	ctx context.Context, req domain.RetrieveRequest, charBudget int,
) (string, []domain.ScoredChunk, error) {
	selected, err := s.Retrieve(ctx, req)
	if err != nil {
		return "", nil, err
	}
	if len(selected) == 0 {
		return "", nil, nil
	}

	docs, err := s.store.ListDocuments(ctx, req.ScopeID)
	if err != nil {
		return "", nil, fmt.Errorf("list documents: %w", err)
	}
	byID := make(map[string]domain.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}

	packed := prompt.Pack(selected, byID, req.Query, charBudget)
	return packed, selected, nil
}
