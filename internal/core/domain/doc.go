// Package domain defines the core business entities for newsrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A news article held in the document store
//   - Chunk: A window of document text sized for embedding
//   - ChunkRef: The identity of a chunk inside the vector index
//   - RetrievalResult: A ranked chunk returned for a query
//   - Answer: A generated answer with its grounding sources
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
