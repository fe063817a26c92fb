package rank

import "github.com/quarrylabs/hearth/internal/core/domain"

// DefaultLambda balances relevance against redundancy in MMR scoring.
const DefaultLambda = 0.7

// Section-type relevance weights. Structural context (headings, tables)
// gets a mild boost, boilerplate metadata a mild penalty. These are
// heuristic tunables, not contracts.
const (
	headingWeight    = 1.15
	subheadingWeight = 1.1
	tableWeight      = 1.05
	metadataWeight   = 0.9
)

// DefaultWeights returns the default section-type relevance weights.
// Types absent from the map weigh 1.0.
func DefaultWeights() map[domain.SectionType]float64 {
	return map[domain.SectionType]float64{
		domain.SectionTypeHeading:    headingWeight,
		domain.SectionTypeSubheading: subheadingWeight,
		domain.SectionTypeTable:      tableWeight,
		domain.SectionTypeMetadata:   metadataWeight,
	}
}

// Selector performs greedy Maximal-Marginal-Relevance selection with a
// per-section cap.
type Selector struct {
	lambda        float64
	perSectionCap int
	weights       map[domain.SectionType]float64
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithLambda sets the relevance/diversity trade-off in [0, 1].
// 1 is pure relevance, 0 pure diversity.
func WithLambda(lambda float64) SelectorOption {
	return func(s *Selector) {
		if lambda >= 0 && lambda <= 1 {
			s.lambda = lambda
		}
	}
}

// WithPerSectionCap limits how many chunks one section may contribute.
func WithPerSectionCap(limit int) SelectorOption {
	return func(s *Selector) {
		if limit > 0 {
			s.perSectionCap = limit
		}
	}
}

// WithWeights overrides the section-type relevance weights.
func WithWeights(weights map[domain.SectionType]float64) SelectorOption {
	return func(s *Selector) {
		if weights != nil {
			s.weights = weights
		}
	}
}

// NewSelector creates a selector with the given options.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{
		lambda:        DefaultLambda,
		perSectionCap: domain.DefaultPerSectionCap,
		weights:       DefaultWeights(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select greedily picks up to k candidates, balancing type-weighted
// relevance against similarity to already-selected chunks, and skipping
// any section that has reached the per-section cap. If every remaining
// candidate is capped out, selection stops short; that is not an error.
//
// Runs in O(k * len(candidates) * selected) vector comparisons.
func (s *Selector) Select(candidates []domain.ScoredChunk, k int) []domain.ScoredChunk {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}

	remaining := make([]domain.ScoredChunk, len(candidates))
	copy(remaining, candidates)

	selected := make([]domain.ScoredChunk, 0, k)
	sectionUse := make(map[string]int)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := 0.0

		for i, cand := range remaining {
			if sectionUse[cand.Chunk.SectionKey()] >= s.perSectionCap {
				continue
			}

			relevance := cand.Score * s.weight(cand.Chunk.SectionType)
			diversity := s.maxSimilarity(cand.Chunk, selected)
			score := s.lambda*relevance - (1-s.lambda)*diversity

			if bestIdx == -1 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}

		if bestIdx == -1 {
			// Every remaining candidate hit its section cap.
			break
		}

		pick := remaining[bestIdx]
		selected = append(selected, pick)
		sectionUse[pick.Chunk.SectionKey()]++
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

// weight returns the relevance weight for a section type (1.0 if unset).
func (s *Selector) weight(t domain.SectionType) float64 {
	if w, ok := s.weights[t]; ok {
		return w
	}
	return 1.0
}

// maxSimilarity returns the highest cosine similarity between the
// candidate and any already-selected chunk, or 0 when nothing is
// selected yet.
func (s *Selector) maxSimilarity(cand domain.Chunk, selected []domain.ScoredChunk) float64 {
	max := 0.0
	for _, sel := range selected {
		if sim := Cosine(cand.Embedding, sel.Chunk.Embedding); sim > max {
			max = sim
		}
	}
	return max
}
