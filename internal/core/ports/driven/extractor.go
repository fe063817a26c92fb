package driven

import (
	"context"

	"github.com/quarrylabs/hearth/internal/core/domain"
)

// Extractor turns an uploaded file into plain text plus optional
// structural metadata. Extraction is an external collaborator boundary:
// PDF/DOCX/table/OCR tooling lives behind this interface and its
// failures surface as domain.ErrExtractionFailed.
type Extractor interface {
	// SupportedTypes returns the document types this extractor handles.
	SupportedTypes() []domain.DocumentType

	// Extract produces the extraction for the named file content.
	// Implementations must tolerate missing optional structure and
	// wrap any failure in domain.ErrExtractionFailed.
	Extract(ctx context.Context, name string, content []byte) (*domain.Extraction, error)
}
