package embed

import (
	"github.com/poiesic/vectory/core"
)

// EstimateCost returns the approximate cost of embedding the chunks,
// computed from estimated token counts and the configured per-token price.
// Purely advisory and entirely offline; safe to call before committing to
// a run.
func (e *Engine) EstimateCost(chunks []*core.Chunk) float64 {
	total := 0
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		total += e.estimator.Count(chunk.Content)
	}
	return float64(total) * e.pricePerToken
}

// Validate reports whether every chunk carries an embedding of the
// configured dimension. Post-condition check after Embed: a false result
// means some batches failed permanently this run.
func (e *Engine) Validate(chunks []*core.Chunk) bool {
	invalid := 0
	for i, chunk := range chunks {
		if err := core.ValidateEmbedding(chunk, e.dimension); err != nil {
			e.logger.Warn("chunk failed embedding validation", "index", i, "err", err)
			invalid++
		}
	}
	if invalid > 0 {
		e.logger.Warn("validation found incomplete embeddings", "invalid", invalid, "total", len(chunks))
	}
	return invalid == 0
}
