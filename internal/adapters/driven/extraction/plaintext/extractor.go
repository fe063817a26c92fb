// Package plaintext provides an in-process extractor for plain text and
// markdown documents.
package plaintext

import (
	"bufio"
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// markdownHeadingRe matches ATX headings up to six levels deep.
var markdownHeadingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)

// Extractor handles plain text and markdown documents without any
// external tooling.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedTypes returns the document types this extractor handles.
func (e *Extractor) SupportedTypes() []domain.DocumentType {
	return []domain.DocumentType{
		domain.DocumentTypeTXT,
		domain.DocumentTypeMD,
	}
}

// Extract converts raw bytes into an extraction. For markdown the ATX
// headings become the structural outline and the first level-one
// heading becomes the title.
func (e *Extractor) Extract(_ context.Context, name string, content []byte) (*domain.Extraction, error) {
	if !utf8.Valid(content) {
		return nil, domain.ErrExtractionFailed
	}

	text := string(content)
	ext := &domain.Extraction{Text: text}

	if domain.DocumentTypeFromName(name) != domain.DocumentTypeMD {
		return ext, nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := markdownHeadingRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		level := len(m[1])
		heading := strings.TrimSpace(m[2])
		if ext.Title == "" && level == 1 {
			ext.Title = heading
		}
		ext.Headings = append(ext.Headings, domain.ExtractedHeading{
			Level: level,
			Text:  heading,
		})
	}

	return ext, nil
}
