package domain

import "fmt"

// SectionType classifies the structural role of a chunk within its document.
type SectionType string

const (
	// SectionTypeMetadata is a synthetic block holding title/author metadata.
	SectionTypeMetadata SectionType = "metadata"
	// SectionTypeHeading is body text under a level-1 heading.
	SectionTypeHeading SectionType = "heading"
	// SectionTypeSubheading is body text under a level-2 heading.
	SectionTypeSubheading SectionType = "subheading"
	// SectionTypeSection is body text under a level-3 or level-4 heading.
	SectionTypeSection SectionType = "section"
	// SectionTypeSubsection is body text under a level-5 or deeper heading.
	SectionTypeSubsection SectionType = "subsection"
	// SectionTypeTable is a table rendered as a markdown grid.
	SectionTypeTable SectionType = "table"
	// SectionTypeText is body text with no enclosing heading.
	SectionTypeText SectionType = "text"
)

// Valid reports whether t is a known section type.
func (t SectionType) Valid() bool {
	switch t {
	case SectionTypeMetadata, SectionTypeHeading, SectionTypeSubheading,
		SectionTypeSection, SectionTypeSubsection, SectionTypeTable, SectionTypeText:
		return true
	}
	return false
}

// SectionTypeForLevel maps a heading level to the section type of the
// body text beneath it. Level 0 means no active heading.
func SectionTypeForLevel(level int) SectionType {
	switch {
	case level <= 0:
		return SectionTypeText
	case level == 1:
		return SectionTypeHeading
	case level == 2:
		return SectionTypeSubheading
	case level <= 4:
		return SectionTypeSection
	default:
		return SectionTypeSubsection
	}
}

// RootHeadingPath is the heading path of content outside any section.
var RootHeadingPath = []string{"ROOT"}

// Chunk is one embedded, independently retrievable unit of document text.
// Chunks are immutable after indexing and are destroyed only when their
// owning document is deleted or its scope is cleared.
type Chunk struct {
	// ID is unique across the store, derived from the owning document
	// ID and the chunk's sequence index.
	ID string

	// DocumentID is the owning Document.
	DocumentID string

	// ScopeID is a denormalised copy of Document.ScopeID for fast filtering.
	ScopeID string

	// Text is the literal chunk content. Never empty.
	Text string

	// Embedding is the vector representation. Its length is fixed by the
	// embedding provider and must be constant across the entire store.
	Embedding []float32

	// HeadingPath locates the chunk within the document outline.
	// ["ROOT"] when the chunk sits outside any section.
	HeadingPath []string

	// SectionType classifies the chunk's structural role.
	SectionType SectionType

	// PageNumber is the 1-based page the chunk starts on, when known.
	PageNumber *int

	// Authors is denormalised from the owning Document.
	Authors []string
}

// ChunkID derives the stable chunk identifier for the given document
// and sequence index.
func ChunkID(documentID string, seq int) string {
	return fmt.Sprintf("%s#%d", documentID, seq)
}

// SectionKey returns the heading-path key used for per-section caps
// during diverse selection. Chunks from different documents never share
// a key even when their heading paths collide.
func (c Chunk) SectionKey() string {
	key := c.DocumentID
	for _, h := range c.HeadingPath {
		key += "/" + h
	}
	return key
}
