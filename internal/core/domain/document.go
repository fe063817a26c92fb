package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// DocumentType identifies the original file format of a document.
type DocumentType string

const (
	// DocumentTypePDF is a PDF file.
	DocumentTypePDF DocumentType = "pdf"
	// DocumentTypeDOCX is a Word (OOXML) file.
	DocumentTypeDOCX DocumentType = "docx"
	// DocumentTypeDOC is a legacy Word file.
	DocumentTypeDOC DocumentType = "doc"
	// DocumentTypeTXT is a plain text file.
	DocumentTypeTXT DocumentType = "txt"
	// DocumentTypeMD is a Markdown file.
	DocumentTypeMD DocumentType = "md"
	// DocumentTypeOther is any format not otherwise listed.
	DocumentTypeOther DocumentType = "other"
)

// DocumentTypeFromName derives the DocumentType from a filename extension.
func DocumentTypeFromName(name string) DocumentType {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "pdf":
		return DocumentTypePDF
	case "docx":
		return DocumentTypeDOCX
	case "doc":
		return DocumentTypeDOC
	case "txt":
		return DocumentTypeTXT
	case "md", "markdown":
		return DocumentTypeMD
	default:
		return DocumentTypeOther
	}
}

// Document represents one uploaded file after extraction and indexing.
type Document struct {
	// ID is the unique identifier, generated at upload.
	ID string

	// ScopeID groups documents (e.g., one conversation).
	// Empty means the document is unscoped and visible to unscoped queries.
	ScopeID string

	// Name is the original filename.
	Name string

	// Type is the original file format, derived from Name.
	Type DocumentType

	// ByteSize is the size of the uploaded file in bytes.
	ByteSize int64

	// PageCount is the number of pages, when the extractor reports one.
	// Zero means unknown.
	PageCount int

	// Authors lists document authors in order. May be empty.
	Authors []string

	// ChunkCount is the number of chunks indexed for this document.
	// A document with zero chunks is still listed but contributes
	// nothing to retrieval.
	ChunkCount int

	// UploadedAt is when the document was indexed.
	UploadedAt time.Time
}
