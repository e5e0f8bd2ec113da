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
//   - Fetcher: Retrieves documentation from a URL
//   - Normaliser: Extracts plain text from one content type
//   - NormaliserRegistry: Selects the appropriate normaliser
//   - PostProcessorPipeline: Splits extracted text into chunks
//   - KnowledgeStore: Document and chunk persistence with nearest-neighbour lookup
//   - BundleStore: Project bundle persistence
//   - TechnologyResolver: Chooses a technology profile for a request
//   - Synthesizer: Produces project files from a prompt and context
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, retrieval is lexical.
//   - LLMService: Language model operations. Without it, synthesis uses templates only.
//   - Metrics: Operational counters. Without it, nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
