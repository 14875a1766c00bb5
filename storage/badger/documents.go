package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ivesna/core"
	"github.com/poiesic/ivesna/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// AddDocuments adds one or more documents to storage.
func (r *DocumentRepository) AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if doc.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				doc.Id = core.ID(nextID)
			}

			if doc.CreatedAt.IsZero() {
				doc.CreatedAt = time.Now().UTC()
			}

			value, err := storage.MarshalDocument(doc)
			if err != nil {
				return err
			}
			if err := tx.Set(makeDocumentKey(doc.Id), value); err != nil {
				return err
			}

			// URL index entry; the document ID lives in the key
			if err := tx.Set(makeDocumentURLKey(doc.Tenant, doc.URL, doc.Id), nil); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var doc *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		doc, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocuments retrieves multiple documents by their IDs.
// Missing documents are silently omitted from the result.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error) {
	docs := make([]*core.Document, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				docs = append(docs, doc)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// FindDocumentsByURL retrieves all documents for the tenant sharing the given URL.
func (r *DocumentRepository) FindDocumentsByURL(ctx context.Context, tenant, url string) ([]*core.Document, error) {
	if tenant == "" || url == "" {
		return nil, storage.ErrInvalidQuery
	}

	var docs []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialDocumentURLKey(tenant, url)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			id := documentIDFromURLKey(iter.Item().Key())
			doc, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				docs = append(docs, doc)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocuments removes documents by their IDs, cascading to their chunks.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)
			doc, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
			if err := tx.Delete(makeDocumentURLKey(doc.Tenant, doc.URL, doc.Id)); err != nil {
				return err
			}

			// Cascade: a chunk never outlives its owning document
			if err := deleteOwnedChunks(tx, doc); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// deleteOwnedChunks removes every chunk referenced by the ownership index
// of the given document, along with the index entries themselves.
func deleteOwnedChunks(tx *badger.Txn, doc *core.Document) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialChunkDocKey(doc.Id)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)

	var indexKeys [][]byte
	var chunkIDs []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		indexKeys = append(indexKeys, iter.Item().KeyCopy(nil))
		chunkIDs = append(chunkIDs, chunkIDFromDocKey(iter.Item().Key()))
	}
	iter.Close()

	for i, indexKey := range indexKeys {
		if err := tx.Delete(makeChunkKey(doc.Tenant, chunkIDs[i])); err != nil {
			return err
		}
		if err := tx.Delete(indexKey); err != nil {
			return err
		}
	}
	return nil
}

// readDocument reads and deserializes a document value.
// Returns (nil, nil) if the key does not exist.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
