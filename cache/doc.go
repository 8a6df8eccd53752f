// Package cache persists computed embeddings keyed by chunk fingerprint,
// so repeated runs over the same corpus skip already-paid-for API calls.
//
// The on-disk format is a single JSON object mapping fingerprints to
// entries. Entries recorded under a different model are ignored on lookup,
// which makes a model upgrade behave as a cold cache rather than an error.
package cache
