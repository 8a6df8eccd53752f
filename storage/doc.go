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

// Package storage defines the vector store abstraction for vectory.
//
// Chunks are addressed by their content fingerprint, so re-indexing the
// same material is idempotent. The interfaces here decouple callers from
// the concrete backend; the badger subpackage provides the production
// implementation, and an in-memory variant is available for tests.
//
// All implementations must be safe for concurrent use, and all methods
// accept a context.Context for cancellation.
package storage
