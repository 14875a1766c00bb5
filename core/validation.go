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

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Tenant must not be empty
//   - URL must not be empty
//
// NOT validated:
//   - ID (0 is valid before a sequence assigns one)
//   - Title and Lang (pages without titles are ingested as-is)
//   - Fingerprint (populated by ingestion)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Tenant == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTenant)
	}

	if doc.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyURL)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Tenant must not be empty
//   - DocumentId must be set (chunks are exclusively owned)
//   - Text must not be empty
//   - Ordinal must not be negative
//
// NOT validated:
//   - Embedding (can be empty until the embedding provider runs)
//   - Score (transient, any value is acceptable)
//   - ID (0 is valid before a sequence assigns one)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Tenant == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyTenant)
	}

	if chunk.DocumentId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingDocumentId)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.Ordinal < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeOrdinal)
	}

	return nil
}
