// Package rank scores and selects chunks for retrieval: cosine
// similarity ranking over a filtered candidate set, followed by greedy
// diversity-aware selection with per-section caps.
package rank

import (
	"math"
	"sort"

	"github.com/quarrylabs/hearth/internal/core/domain"
)

// DefaultPool bounds the number of ranked candidates handed to diverse
// selection, keeping re-ranking cost independent of store size.
const DefaultPool = domain.DefaultCandidatePool

// epsilon guards the cosine denominator against zero-vectors.
const epsilon = 1e-9

// Cosine returns the cosine similarity of two vectors. Mismatched
// lengths compare only the shared prefix; the store's dimensionality
// invariant makes that case unreachable in practice.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + epsilon)
}

// Rank scores every chunk against the query vector and returns at most
// pool candidates sorted by descending similarity. Chunks without an
// embedding never rank. pool <= 0 means DefaultPool.
func Rank(chunks []domain.Chunk, query []float32, pool int) []domain.ScoredChunk {
	if pool <= 0 {
		pool = DefaultPool
	}

	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		scored = append(scored, domain.ScoredChunk{
			Chunk: chunk,
			Score: Cosine(query, chunk.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > pool {
		scored = scored[:pool]
	}
	return scored
}
