package domain

// Retrieval defaults. These bound the work done per query regardless of
// store size and are overridable per request or via configuration.
const (
	// DefaultTopK is the number of chunks returned by a retrieval.
	DefaultTopK = 8

	// DefaultPerSectionCap limits how many chunks one section may
	// contribute to a selection.
	DefaultPerSectionCap = 3

	// DefaultCandidatePool bounds the similarity candidates handed to
	// diverse re-ranking.
	DefaultCandidatePool = 80
)

// RetrieveRequest describes one retrieval query. All filters are optional;
// the zero value of each field means "no filter".
type RetrieveRequest struct {
	// Query is the natural-language question to ground.
	Query string

	// ScopeID restricts retrieval to chunks of one scope. When set,
	// chunks from other scopes are never returned, even if the scope
	// matches nothing. Empty means all chunks are eligible.
	ScopeID string

	// TopK is the maximum number of chunks to return (default DefaultTopK).
	TopK int

	// PerSectionCap limits chunks per section (default DefaultPerSectionCap).
	PerSectionCap int

	// FileIDs restricts retrieval to specific documents.
	FileIDs []string

	// SectionTypes restricts retrieval to specific section types.
	SectionTypes []SectionType
}

// Normalise fills defaulted fields in place.
func (r *RetrieveRequest) Normalise() {
	if r.TopK <= 0 {
		r.TopK = DefaultTopK
	}
	if r.PerSectionCap <= 0 {
		r.PerSectionCap = DefaultPerSectionCap
	}
}

// ScoredChunk pairs a retrieved chunk with its similarity score.
type ScoredChunk struct {
	// Chunk is the retrieved chunk.
	Chunk Chunk

	// Score is the cosine similarity against the query embedding.
	Score float64
}
