package storage

import (
	"context"

	"github.com/poiesic/ivesna/core"
)

// DocumentRepository provides operations for managing documents.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// AddDocuments adds one or more documents to storage.
	// For documents with ID=0, generates new IDs from sequence.
	// Sets CreatedAt if not already set.
	// Returns the documents with generated IDs populated.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// FindDocumentsByURL retrieves all documents for the tenant sharing the
	// given URL. Duplicate rows for one URL are possible after re-ingestion.
	FindDocumentsByURL(ctx context.Context, tenant, url string) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs, cascading to their
	// chunks so no chunk outlives its owning document.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// Close releases repository resources.
	Close() error
}

// ChunkRepository provides operations for managing chunks.
// Implementations must be thread-safe and support concurrent access.
// All read paths are side-effect free; concurrent queries need no locking.
type ChunkRepository interface {
	// AddChunks adds one or more chunks to storage.
	// For chunks with ID=0, generates new IDs from sequence.
	// Returns the chunks with generated IDs populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks overwrites existing chunks in place. Every chunk
	// must carry a non-zero ID. Returns ErrNotFound if any chunk does
	// not already exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by tenant and ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, tenant string, id core.ID) (*core.Chunk, error)

	// ListChunks retrieves every chunk stored for the tenant.
	// Rows whose stored value fails to deserialize are logged and skipped
	// rather than failing the listing; one corrupt row must not block
	// retrieval for the whole tenant.
	ListChunks(ctx context.Context, tenant string) ([]*core.Chunk, error)

	// CountChunks returns the number of chunks stored for the tenant.
	CountChunks(ctx context.Context, tenant string) (int, error)

	// Close releases repository resources.
	Close() error
}
