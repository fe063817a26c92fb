package domain

// Extraction is the output of the extraction collaborator for one file.
// All fields other than Text are optional; consumers must tolerate their
// absence. Extraction quality (table detection, OCR) is the collaborator's
// concern, not the core's.
type Extraction struct {
	// Text is the full plain text of the document.
	Text string

	// Title is the document title, when detected.
	Title string

	// Authors lists detected authors in order.
	Authors []string

	// PageCount is the number of pages, when known.
	PageCount int

	// Headings lists detected structural headings, in document order.
	Headings []ExtractedHeading

	// Tables lists detected tables as 2-D cell arrays.
	Tables []ExtractedTable
}

// ExtractedHeading is one structural heading reported by the extractor.
type ExtractedHeading struct {
	// Level is the outline depth, 1 being the topmost.
	Level int

	// Text is the heading title.
	Text string

	// Page is the 1-based page number, when known (0 = unknown).
	Page int
}

// ExtractedTable is one table reported by the extractor.
type ExtractedTable struct {
	// Data holds rows of cells. Rows may be ragged; consumers pad
	// short rows when rendering.
	Data [][]string

	// Caption is the table caption, when detected.
	Caption string

	// Page is the 1-based page number, when known (0 = unknown).
	Page int
}
