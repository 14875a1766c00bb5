package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from database sequences or by content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces the same ID. Used for page fingerprints so
// ingestion can detect unchanged content on re-crawls.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document represents one successfully ingested web page.
// A document is created once per ingested page and never mutated afterwards;
// removal cascades to its chunks. Two document rows may carry the same URL when
// a page is re-ingested, so URL is not an identity.
type Document struct {
	Id          ID
	Tenant      string
	URL         string
	Title       string
	Lang        string
	Fingerprint ID // BLAKE2b fingerprint of the extracted page text
	CreatedAt   time.Time
}

// Chunk is a bounded token-window slice of a document's text, the unit of
// embedding and scoring. A chunk belongs to exactly one document and one tenant.
type Chunk struct {
	Id         ID
	DocumentId ID
	Tenant     string
	Ordinal    int // 0-based reading-order position within the document
	Text       string
	Embedding  []float32
	Score      float64 // transient: last computed relevance, not authoritative
}

// ScoredChunk is the ephemeral result of score fusion for a single chunk.
// Produced per candidate, reduced to one per document during aggregation.
type ScoredChunk struct {
	ChunkId    ID
	Text       string
	DocumentId ID
	Score      float64
}

// RetrievedChunk is a final ranked result handed back to the caller,
// enriched with the owning document's URL and title for citation purposes.
type RetrievedChunk struct {
	ChunkId    ID
	DocumentId ID
	Text       string
	URL        string
	Title      string
	Score      float64
}
