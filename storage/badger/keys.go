package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/ivesna/core"
)

// Key prefixes for different data types
const (
	documentPrefix    = "docrec"
	documentURLPrefix = "docurl"
	documentIDSeq     = "docrecseq"
	chunkPrefix       = "chkrec"
	chunkDocPrefix    = "chkdoc"
	chunkIDSeq        = "chkrecseq"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentURLKey generates a composite key for the tenant URL index.
// Format: prefix:tenant\x00url\x00id
// Tenant and URL are NUL-delimited so prefix scans cannot bleed across values.
func makeDocumentURLKey(tenant, url string, id core.ID) []byte {
	buf := makePartialDocumentURLKey(tenant, url)
	idBytes := make([]byte, 8)
	// BigEndian so lexicographic sort matches numeric order
	binary.BigEndian.PutUint64(idBytes, uint64(id))
	return append(buf, idBytes...)
}

// makePartialDocumentURLKey generates a partial key for URL index scans.
// Format: prefix:tenant\x00url\x00
func makePartialDocumentURLKey(tenant, url string) []byte {
	prefix := documentURLPrefix + ":"
	buf := make([]byte, 0, len(prefix)+len(tenant)+len(url)+2)
	buf = append(buf, prefix...)
	buf = append(buf, tenant...)
	buf = append(buf, 0)
	buf = append(buf, url...)
	buf = append(buf, 0)
	return buf
}

// makeChunkKey generates a key for a chunk by tenant and ID.
// Chunks are keyed under their tenant so a full tenant listing is one
// prefix scan and cross-tenant reads are impossible by construction.
func makeChunkKey(tenant string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", chunkPrefix, tenant, id))
}

// makeTenantChunkPrefix generates the scan prefix for all chunks of a tenant.
func makeTenantChunkPrefix(tenant string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkPrefix, tenant))
}

// makeChunkDocKey generates a composite key for the document ownership index.
// Format: prefix:documentID:chunkID (both BigEndian fixed width)
func makeChunkDocKey(documentID, chunkID core.ID) []byte {
	buf := makePartialChunkDocKey(documentID)
	idBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(idBytes, uint64(chunkID))
	return append(buf, idBytes...)
}

// makePartialChunkDocKey generates a partial key for ownership index scans.
func makePartialChunkDocKey(documentID core.ID) []byte {
	prefix := chunkDocPrefix + ":"
	buf := make([]byte, 0, len(prefix)+8)
	buf = append(buf, prefix...)
	idBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(idBytes, uint64(documentID))
	return append(buf, idBytes...)
}

// chunkIDFromDocKey extracts the chunk ID from an ownership index key.
func chunkIDFromDocKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// documentIDFromURLKey extracts the document ID from a URL index key.
func documentIDFromURLKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}
