// Package domain defines the core business entities for DocuGen.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested documentation source and its lifecycle status
//   - Chunk: A retrievable unit of extracted text within a document
//   - TechnologyProfile: A statically registered target stack
//   - ProjectBundle: The assembled output of one generation request
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
