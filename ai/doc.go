// Package ai defines the remote embedding client abstraction used by the
// embedding engine, along with its typed failure taxonomy and configuration.
//
// Concrete clients live in subpackages: openai (direct HTTP against the
// OpenAI embeddings API), local (OpenAI-compatible local services via
// langchaingo), and mock (deterministic test double).
package ai
