// Package domain defines the core business entities for studyrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested file, identified by an opaque generated ID
//   - Chunk: A searchable span of a document's text
//   - Section: A page or block of text produced by a format loader
//   - Answer, Quiz, Summary: Ephemeral results of the query engine
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
