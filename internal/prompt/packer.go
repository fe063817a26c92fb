// Package prompt assembles retrieved chunks into a bounded-size context
// block for inclusion in a generation prompt. Chunks are grouped by
// document and section type, annotated with citation keys, and cut off
// at group boundaries when the character budget runs out.
package prompt

import (
	"fmt"
	"strings"

	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/logger"
)

// DefaultHeadroom is reserved alongside the query for instruction text
// when seeding the character budget.
const DefaultHeadroom = 600

// DefaultCharBudget is the default context budget when callers pass none.
const DefaultCharBudget = 12000

// sectionOrder is the priority in which groups are emitted per document.
var sectionOrder = []domain.SectionType{
	domain.SectionTypeMetadata,
	domain.SectionTypeHeading,
	domain.SectionTypeSubheading,
	domain.SectionTypeSection,
	domain.SectionTypeSubsection,
	domain.SectionTypeText,
	domain.SectionTypeTable,
}

// Instruction returns the preamble telling the generation provider to
// answer only from the packed context.
func Instruction() string {
	return "Answer using only the document context below. " +
		"Cite sources by their [n] key. " +
		"If the context does not contain the answer, say so instead of guessing."
}

// Pack renders the selected chunks as plain text within charBudget
// characters. docs maps document IDs to their metadata for header
// labelling; unknown IDs fall back to the raw ID. The budget is seeded
// with the query length plus headroom so the final prompt (instructions
// included) stays bounded. Groups are never truncated mid-way: when the
// next group or document would overflow, packing stops.
func Pack(chunks []domain.ScoredChunk, docs map[string]domain.Document, query string, charBudget int) string {
	if len(chunks) == 0 {
		return ""
	}
	if charBudget <= 0 {
		charBudget = DefaultCharBudget
	}

	used := len(query) + DefaultHeadroom
	var out strings.Builder

	for i, doc := range groupByDocument(chunks, docs) {
		header := docHeader(i+1, doc)
		if used+len(header) > charBudget {
			break
		}

		var groups []string
		groupLen := len(header)
		for _, sectionType := range sectionOrder {
			group := renderGroup(doc.bySection[sectionType])
			if group == "" {
				continue
			}
			if used+groupLen+len(group) > charBudget {
				// Budget exhausted: emit what fits, never a partial group.
				break
			}
			groups = append(groups, group)
			groupLen += len(group)
		}

		if len(groups) == 0 {
			break
		}

		out.WriteString(header)
		for _, group := range groups {
			out.WriteString(group)
		}
		used += groupLen
	}

	logger.Debug("Packer: %d/%d characters used", used, charBudget)
	return strings.TrimRight(out.String(), "\n")
}

// docGroup holds one document's chunks bucketed by section type.
type docGroup struct {
	name      string
	authors   []string
	bySection map[domain.SectionType][]domain.ScoredChunk
}

// groupByDocument buckets chunks per document, preserving
// first-appearance order.
func groupByDocument(chunks []domain.ScoredChunk, docs map[string]domain.Document) []*docGroup {
	var order []string
	byID := make(map[string]*docGroup)

	for _, sc := range chunks {
		id := sc.Chunk.DocumentID
		group, ok := byID[id]
		if !ok {
			name := id
			if doc, found := docs[id]; found && doc.Name != "" {
				name = doc.Name
			}
			group = &docGroup{
				name:      name,
				authors:   sc.Chunk.Authors,
				bySection: make(map[domain.SectionType][]domain.ScoredChunk),
			}
			byID[id] = group
			order = append(order, id)
		}
		group.bySection[sc.Chunk.SectionType] = append(group.bySection[sc.Chunk.SectionType], sc)
	}

	groups := make([]*docGroup, len(order))
	for i, id := range order {
		groups[i] = byID[id]
	}
	return groups
}

// docHeader renders the per-document header with its citation key.
func docHeader(citation int, doc *docGroup) string {
	header := fmt.Sprintf("[%d] %s", citation, doc.name)
	if len(doc.authors) > 0 {
		header += " (" + strings.Join(doc.authors, ", ") + ")"
	}
	return header + "\n"
}

// renderGroup joins a section-type group's chunks, each introduced by
// its heading path and optional page number.
func renderGroup(chunks []domain.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var b strings.Builder
	for _, sc := range chunks {
		b.WriteString("### ")
		b.WriteString(strings.Join(sc.Chunk.HeadingPath, " > "))
		b.WriteString("\n")
		if sc.Chunk.PageNumber != nil {
			fmt.Fprintf(&b, "[p.%d] ", *sc.Chunk.PageNumber)
		}
		b.WriteString(sc.Chunk.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}
