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

// Package chunkio reads and writes chunk files, the JSON interchange
// format between the chunking stage and the embedding engine. A chunk
// file is a JSON array of objects with "content", "metadata" and
// "embeddings" fields; chunks entering the engine usually carry no
// embeddings, chunks leaving it do.
package chunkio

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/poiesic/vectory/core"
)

// Load reads a chunk file from path.
func Load(path string) ([]*core.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("chunkio: read %s: %w", path, err)
	}

	var chunks []*core.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("chunkio: parse %s: %w", path, err)
	}
	return chunks, nil
}

// Save writes chunks to path as indented JSON.
func Save(path string, chunks []*core.Chunk) error {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("chunkio: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("chunkio: write %s: %w", path, err)
	}
	return nil
}
