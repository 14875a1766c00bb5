package reembed

import (
	"context"

	"github.com/poiesic/ivesna/core"
	"github.com/poiesic/ivesna/storage"
)

// ChunkIterator walks a tenant's chunks in fixed-size batches.
type ChunkIterator struct {
	repo      storage.ChunkRepository
	batchSize int
}

// NewChunkIterator creates an iterator with the given batch size.
func NewChunkIterator(repo storage.ChunkRepository, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ChunkIterator{repo: repo, batchSize: batchSize}
}

// ForEach calls fn for every batch of the tenant's chunks. Iteration
// stops at the first error from fn.
func (it *ChunkIterator) ForEach(ctx context.Context, tenant string, fn func([]*core.Chunk) error) error {
	chunks, err := it.repo.ListChunks(ctx, tenant)
	if err != nil {
		return err
	}

	for start := 0; start < len(chunks); start += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + it.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := fn(chunks[start:end]); err != nil {
			return err
		}
	}
	return nil
}
