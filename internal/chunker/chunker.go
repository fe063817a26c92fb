// Package chunker turns extracted document text into bounded, overlapping
// chunks. Splitting is section-aware: headings, page markers and tables
// in the extraction shape the chunk metadata that retrieval later ranks
// and caps on.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/logger"
)

// DefaultWindowSize is the default number of characters per chunk window.
const DefaultWindowSize = 1500

// DefaultOverlap is the default number of overlapping characters between
// consecutive windows.
const DefaultOverlap = 200

// Chunker splits extractions into chunk candidates. The candidates carry
// no embeddings; the indexer fills those in.
type Chunker struct {
	windowSize int
	overlap    int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithWindowSize sets the window size in characters.
func WithWindowSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.windowSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		windowSize: DefaultWindowSize,
		overlap:    DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed window size
	if c.overlap >= c.windowSize {
		c.overlap = c.windowSize / 4
	}

	return c
}

// Chunk splits an extraction into chunk candidates for the document.
// At least one chunk is always produced, even for empty text, so every
// indexed file has a lookup target.
func (c *Chunker) Chunk(doc domain.Document, ext *domain.Extraction) []domain.Chunk {
	if ext == nil {
		ext = &domain.Extraction{}
	}

	blocks := splitSections(doc, ext)
	logger.Debug("Chunker: %d section blocks for %q", len(blocks), doc.Name)

	var chunks []domain.Chunk
	seq := 0
	for _, block := range blocks {
		for _, window := range c.windows(block.text) {
			chunk := domain.Chunk{
				ID:          domain.ChunkID(doc.ID, seq),
				DocumentID:  doc.ID,
				ScopeID:     doc.ScopeID,
				Text:        window,
				HeadingPath: block.headingPath,
				SectionType: block.sectionType,
				Authors:     doc.Authors,
			}
			if block.page > 0 {
				page := block.page
				chunk.PageNumber = &page
			}
			chunks = append(chunks, chunk)
			seq++
		}
	}

	logger.Debug("Chunker: %d chunks for %q", len(chunks), doc.Name)
	return chunks
}

// windows splits text into overlapping windows of windowSize bytes,
// stepping forward by windowSize-overlap. Window edges are nudged back
// to rune starts so no window splits a multi-byte rune, and trailing
// partial windows are kept, so every rune belongs to at least one window.
func (c *Chunker) windows(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if len(text) <= c.windowSize {
		return []string{text}
	}

	step := c.windowSize - c.overlap
	estimated := (len(text) / step) + 1
	windows := make([]string, 0, estimated)

	start := 0
	for start < len(text) {
		end := start + c.windowSize
		if end >= len(text) {
			windows = append(windows, text[start:])
			break
		}
		end = runeFloor(text, end)
		if end <= start {
			// Window narrower than one rune: take the rune whole.
			_, size := utf8.DecodeRuneInString(text[start:])
			end = start + size
			if end >= len(text) {
				windows = append(windows, text[start:])
				break
			}
		}
		windows = append(windows, text[start:end])

		next := runeFloor(text, start+step)
		if next <= start {
			next = end
		}
		start = next
	}

	return windows
}

// runeFloor backs i up to the nearest rune start at or before it.
func runeFloor(text string, i int) int {
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
