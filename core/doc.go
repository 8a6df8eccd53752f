// Package core defines the domain model shared across the embedding
// pipeline: the Chunk retrieval unit, deterministic content fingerprinting,
// and validation of chunks before and after embedding.
package core
