// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/poiesic/vectory/core"
)

// FileName is the cache file name inside the cache directory.
const FileName = "embeddings_cache.json"

// Entry is one cached embedding with its provenance.
type Entry struct {
	Embedding []float32      `json:"embedding"`
	Model     string         `json:"model"`
	Dimension int            `json:"dimension"`
	Timestamp time.Time      `json:"timestamp"`
	Tokens    int            `json:"tokens"`
	Metadata  map[string]any `json:"metadata"`
}

// Store is a persistent, content-addressed embedding cache. It owns the
// fingerprint-to-entry mapping exclusively; the engine interacts with it
// only through Lookup, Record and Flush. Safe for concurrent use.
type Store struct {
	path      string
	model     string
	dimension int
	logger    *slog.Logger

	mu      sync.Mutex
	entries map[string]Entry
}

// Open loads the cache for the given model from dir, creating the
// directory if needed. A missing or corrupt cache file is not an error:
// the store starts cold and logs a warning.
func Open(dir, model string, dimension int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}

	s := &Store{
		path:      filepath.Join(dir, FileName),
		model:     model,
		dimension: dimension,
		logger:    slog.Default().With("component", "embedding-cache"),
		entries:   make(map[string]Entry),
	}
	s.load()
	return s, nil
}

// load reads the cache file into memory. Never fails; any problem leaves
// the store cold.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read cache file, starting cold", "path", s.path, "err", err)
		}
		return
	}

	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("cache file is corrupt, starting cold", "path", s.path, "err", err)
		return
	}

	s.entries = entries
	s.logger.Info("loaded embedding cache", "path", s.path, "entries", len(entries))
}

// Lookup returns the cached vector for the chunk, or nil and false on a
// miss. An entry recorded under a different model is a miss.
func (s *Store) Lookup(chunk *core.Chunk) ([]float32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[chunk.Fingerprint()]
	if !ok || entry.Model != s.model {
		return nil, false
	}

	vec := make([]float32, len(entry.Embedding))
	copy(vec, entry.Embedding)
	return vec, true
}

// Record inserts or overwrites the entry for the chunk under the active
// model. The chunk's metadata is stored alongside for provenance.
func (s *Store) Record(chunk *core.Chunk, embedding []float32, tokens int) {
	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[chunk.Fingerprint()] = Entry{
		Embedding: vec,
		Model:     s.model,
		Dimension: s.dimension,
		Timestamp: time.Now().UTC(),
		Tokens:    tokens,
		Metadata:  chunk.Metadata,
	}
}

// Flush atomically persists the full mapping: the JSON is written to a
// temp file in the cache directory and renamed over the previous file, so
// a crash mid-flush never corrupts existing state. Safe to call repeatedly.
func (s *Store) Flush() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.entries, "", "  ")
	count := len(s.entries)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("cache: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: replace cache file: %w", err)
	}

	s.logger.Info("flushed embedding cache", "path", s.path, "entries", count)
	return nil
}

// Len returns the number of entries currently held, across all models.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
