// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Loader / LoaderRegistry: Extract text sections from a file format
//   - Chunker: Split sections into overlapping chunks
//   - DocumentStore: Embed, persist and search chunks
//   - ChunkRepository: Persistence backend behind the DocumentStore
//   - EmbeddingService: Generates vector embeddings
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Generative model. Without it, ingestion and retrieval still
//     work but ask, quiz and summarize return domain.ErrLLMUnavailable.
//   - PromptStore: Custom prompt templates. Without it, built-in defaults are used.
//   - Metrics: Operation counters. Without it, nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or loader package
package driven
