package ai

import "errors"

var (
	// ErrEmbeddingCountMismatch is returned when a provider returns a
	// different number of embeddings than texts submitted.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match input count")
)
