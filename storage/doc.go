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


// Package storage provides the storage abstraction layer for ivesna.
//
// This package defines repository interfaces that decouple storage
// implementation from the retrieval and ingestion logic. Different backends
// (BadgerDB, in-memory) can be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the interfaces defined here
// to enforce abstraction:
//
//	docs, err := badger.NewDocumentRepository(backend)  // returns storage.DocumentRepository
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - DocumentRepository: operations on documents (one row per ingested page)
//   - ChunkRepository: operations on tenant-scoped chunk collections
//
// From the retrieval engine's perspective both repositories are strictly
// read-only; retrieval never mutates the store, so any number of concurrent
// queries may run against the same tenant without locking.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
