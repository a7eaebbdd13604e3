// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Chunker: Splits document text into overlapping windows
//   - EmbeddingService: Maps text to fixed-dimension vectors
//   - VectorIndex: Stores vectors and answers k-nearest-neighbour queries
//   - DocumentStore: Document persistence, replayed on cold start
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, questions return retrieved context only.
//   - QueryLogStore: Query history. Without it, questions are not logged.
//   - NormaliserRegistry: File import. Without it, only raw text can be ingested.
//   - Connector: Directory scanning and watching.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
