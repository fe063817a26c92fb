package chunker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/quarrylabs/hearth/internal/core/domain"
)

// minCapsHeadingLen is the minimum length for an all-caps line to be
// treated as a heading. Shorter shouty lines (acronyms, "NOTE") are body.
const minCapsHeadingLen = 7

var (
	numberedHeadingRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)[.)]?\s+\S`)
	pageMarkerRe      = regexp.MustCompile(`^===\s*Page\s+(\d+)`)
)

// section is one contiguous run of document text sharing a heading path,
// a section type and a starting page.
type section struct {
	headingPath []string
	sectionType domain.SectionType
	page        int // 0 = unknown
	text        string
}

// splitSections scans the extraction line by line and produces ordered
// section blocks: an optional metadata block, one block per run of body
// text between headings, and one block per table.
func splitSections(doc domain.Document, ext *domain.Extraction) []section {
	var blocks []section

	if meta := metadataBlock(ext); meta != "" {
		blocks = append(blocks, section{
			headingPath: domain.RootHeadingPath,
			sectionType: domain.SectionTypeMetadata,
			text:        meta,
		})
	}

	blocks = append(blocks, scanBody(doc, ext)...)

	for _, table := range ext.Tables {
		grid := renderTable(table)
		if grid == "" {
			continue
		}
		blocks = append(blocks, section{
			headingPath: domain.RootHeadingPath,
			sectionType: domain.SectionTypeTable,
			page:        table.Page,
			text:        grid,
		})
	}

	if len(blocks) == 0 {
		// Near-empty file: keep a lookup target so the upload stays visible.
		blocks = append(blocks, section{
			headingPath: domain.RootHeadingPath,
			sectionType: domain.SectionTypeText,
			text:        doc.Name,
		})
	}

	return blocks
}

// metadataBlock renders title/author metadata as one synthetic block.
// Returns "" when the extraction carries no metadata.
func metadataBlock(ext *domain.Extraction) string {
	var lines []string
	if ext.Title != "" {
		lines = append(lines, "Title: "+ext.Title)
	}
	if len(ext.Authors) > 0 {
		lines = append(lines, "Authors: "+strings.Join(ext.Authors, ", "))
	}
	return strings.Join(lines, "\n")
}

// headingStack tracks the current outline position while scanning.
type headingStack struct {
	levels []int
	titles []string
}

// push enters a heading, popping any sibling or deeper levels first.
func (h *headingStack) push(level int, title string) {
	for len(h.levels) > 0 && h.levels[len(h.levels)-1] >= level {
		h.levels = h.levels[:len(h.levels)-1]
		h.titles = h.titles[:len(h.titles)-1]
	}
	h.levels = append(h.levels, level)
	h.titles = append(h.titles, title)
}

// path returns the current heading path, or ROOT outside any section.
func (h *headingStack) path() []string {
	if len(h.titles) == 0 {
		return domain.RootHeadingPath
	}
	path := make([]string, len(h.titles))
	copy(path, h.titles)
	return path
}

// level returns the innermost heading level, or 0 outside any section.
func (h *headingStack) level() int {
	if len(h.levels) == 0 {
		return 0
	}
	return h.levels[len(h.levels)-1]
}

// scanBody walks the text line by line, classifying headings, tracking
// page markers and flushing body runs as section blocks. Headings the
// extractor reported take precedence over the line scan: binary formats
// carry outline structure (and pages) the text alone cannot recover.
func scanBody(doc domain.Document, ext *domain.Extraction) []section {
	if strings.TrimSpace(ext.Text) == "" {
		return nil
	}

	known := knownHeadings(ext.Headings)

	var (
		blocks  []section
		stack   headingStack
		buffer  []string
		page    int
		bufPage int
	)

	flush := func() {
		body := strings.TrimSpace(strings.Join(buffer, "\n"))
		buffer = buffer[:0]
		if body == "" {
			return
		}
		blocks = append(blocks, section{
			headingPath: stack.path(),
			sectionType: domain.SectionTypeForLevel(stack.level()),
			page:        bufPage,
			text:        body,
		})
	}

	for _, line := range strings.Split(ext.Text, "\n") {
		trimmed := strings.TrimSpace(line)

		if m := pageMarkerRe.FindStringSubmatch(trimmed); m != nil {
			// Page markers update position without becoming content.
			if n, err := strconv.Atoi(m[1]); err == nil {
				page = n
			}
			continue
		}

		if h, ok := known[trimmed]; ok {
			flush()
			if h.Page > 0 {
				page = h.Page
			}
			stack.push(h.Level, trimmed)
			bufPage = page
			continue
		}

		if level, title, ok := classifyHeading(trimmed); ok {
			flush()
			stack.push(level, title)
			bufPage = page
			continue
		}

		if len(buffer) == 0 {
			bufPage = page
		}
		buffer = append(buffer, line)
	}
	flush()

	return blocks
}

// knownHeadings indexes extractor-reported headings by their text so a
// matching body line classifies as a heading even when it looks like
// plain prose to the line scan.
func knownHeadings(headings []domain.ExtractedHeading) map[string]domain.ExtractedHeading {
	if len(headings) == 0 {
		return nil
	}
	known := make(map[string]domain.ExtractedHeading, len(headings))
	for _, h := range headings {
		text := strings.TrimSpace(h.Text)
		if text == "" || h.Level <= 0 {
			continue
		}
		known[text] = h
	}
	return known
}

// classifyHeading reports whether the line is a heading, and at what
// outline level. A line is a heading when it matches a markdown "#"
// prefix, a numbered outline prefix ("1.2.3 Title"), or is an all-caps
// line of at least minCapsHeadingLen characters.
func classifyHeading(line string) (level int, title string, ok bool) {
	if line == "" {
		return 0, "", false
	}

	if strings.HasPrefix(line, "#") {
		hashes := 0
		for hashes < len(line) && line[hashes] == '#' {
			hashes++
		}
		title = strings.TrimSpace(line[hashes:])
		if title == "" {
			return 0, "", false
		}
		return hashes, title, true
	}

	if m := numberedHeadingRe.FindStringSubmatch(line); m != nil {
		level = strings.Count(m[1], ".") + 1
		return level, line, true
	}

	if isCapsHeading(line) {
		return 1, line, true
	}

	return 0, "", false
}

// isCapsHeading reports whether the line is an all-caps heading:
// at least minCapsHeadingLen characters, contains letters, and no
// lowercase letters.
func isCapsHeading(line string) bool {
	if len(line) < minCapsHeadingLen {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// renderTable converts a 2-D cell array into a fixed-width markdown grid:
// header row, separator row, data rows. Short rows are right-padded with
// empty cells. Returns "" for tables with no cells.
func renderTable(table domain.ExtractedTable) string {
	rows := table.Data
	if len(rows) == 0 {
		return ""
	}

	columns := 0
	for _, row := range rows {
		if len(row) > columns {
			columns = len(row)
		}
	}
	if columns == 0 {
		return ""
	}

	widths := make([]int, columns)
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	if table.Caption != "" {
		fmt.Fprintf(&b, "%s\n", table.Caption)
	}

	writeRow := func(row []string) {
		b.WriteString("|")
		for i := 0; i < columns; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(&b, " %-*s |", widths[i], cell)
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	b.WriteString("|")
	for i := 0; i < columns; i++ {
		b.WriteString(" " + strings.Repeat("-", widths[i]) + " |")
	}
	b.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}

	return strings.TrimRight(b.String(), "\n")
}
