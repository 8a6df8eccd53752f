// Package mock provides a deterministic ai.BatchEmbedder test double with
// injectable behavior via function fields.
package mock
