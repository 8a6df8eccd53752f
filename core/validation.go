package core

import (
	"fmt"
	"strings"
)

// ValidateChunk checks that a chunk is embeddable. Remote embedding APIs
// reject empty inputs, so the check happens here before any network work.
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("%w: nil chunk", ErrEmptyContent)
	}
	if strings.TrimSpace(c.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// ValidateEmbedding checks that a chunk carries an embedding of the
// expected dimension. Used as a post-condition after an embedding run.
func ValidateEmbedding(c *Chunk, dimension int) error {
	if c == nil || !c.Embedded() {
		return ErrNoEmbedding
	}
	if len(c.Embedding) != dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(c.Embedding), dimension)
	}
	return nil
}
