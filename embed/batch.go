package embed

import "github.com/poiesic/vectory/core"

// makeBatches partitions chunks into consecutive batches of at most size
// elements, preserving input order: batch i holds chunks
// [i*size, (i+1)*size). Pure function of its inputs; the last batch may be
// shorter. A non-positive size yields no batches (callers validate size
// before any network work).
func makeBatches(chunks []*core.Chunk, size int) [][]*core.Chunk {
	if size <= 0 || len(chunks) == 0 {
		return nil
	}

	batches := make([][]*core.Chunk, 0, (len(chunks)+size-1)/size)
	for i := 0; i < len(chunks); i += size {
		end := min(i+size, len(chunks))
		batches = append(batches, chunks[i:end:end])
	}
	return batches
}
