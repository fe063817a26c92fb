// Package domain defines the core business entities for Hearth.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded, indexed file
//   - Chunk: An embedded, independently retrievable unit of document text
//   - Extraction: The output of the extraction collaborator
//   - RetrieveRequest: An explicit retrieval query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
