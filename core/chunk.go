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

package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
	"github.com/goccy/go-json"
)

// Chunk is a single retrieval unit produced by an upstream chunking stage.
// Content and Metadata are set on construction and never change; Embedding
// starts nil and is populated by the embedding engine. The JSON shape
// matches the chunk files exchanged with the chunking and vector-store
// stages, with "embeddings" serialized as null until the chunk is embedded.
type Chunk struct {
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"embeddings"`
}

// Fingerprint returns a deterministic digest identifying the chunk for
// cache lookups. It hashes the content together with the metadata in
// canonical (key-sorted) JSON form, so two chunks collide exactly when
// both their content and metadata are equal.
func (c *Chunk) Fingerprint() string {
	meta, err := json.Marshal(c.Metadata)
	if err != nil {
		// Metadata decoded from JSON always re-marshals; anything else
		// degrades to a content-only key.
		meta = nil
	}

	h, _ := blake2b.New(32, nil)
	h.Write([]byte(c.Content))
	h.Write([]byte{':'})
	h.Write(meta)
	return hex.EncodeToString(h.Sum(nil))
}

// Embedded reports whether the chunk carries an embedding vector.
func (c *Chunk) Embedded() bool {
	return len(c.Embedding) > 0
}
