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


package retrieval

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmbeddingProvider wraps failures of the embedding provider
	// (unreachable, timed out, malformed response). Fatal for the current
	// retrieval call; never retried here.
	ErrEmbeddingProvider = errors.New("embedding provider failed")

	// ErrStore wraps failures of the chunk/document store.
	// Fatal for the current retrieval call.
	ErrStore = errors.New("store failed")

	// ErrInvalidRule is returned when a prior rule table fails validation.
	ErrInvalidRule = errors.New("invalid prior rule")
)
