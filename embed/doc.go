// Package embed turns chunks into embedding vectors through a remote,
// rate-limited embedding API. The Engine composes cache lookup, fixed-size
// batching, exponential-backoff retries and run statistics; a failed batch
// never aborts the run, it only leaves its chunks without vectors.
package embed
