// Package remote defines the document-store capability the engine persists
// against, plus its Postgres and in-memory implementations. Documents are
// addressed by (collection path, id); multi-document buckets rely on id
// stability for the reconciling batch-write diff.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetDocument when the document does not exist.
var ErrNotFound = errors.New("document not found")

// Op is one entry of an atomic batch write.
type Op struct {
	Delete     bool
	Collection string
	ID         string
	Data       json.RawMessage // upsert payload, nil for deletes
}

// Upsert builds a create-or-replace batch op from any JSON-encodable value.
func Upsert(collection, id string, data any) (Op, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Op{}, fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return Op{Collection: collection, ID: id, Data: raw}, nil
}

// Delete builds a delete batch op.
func Delete(collection, id string) Op {
	return Op{Delete: true, Collection: collection, ID: id}
}

// Store is the remote document store capability.
type Store interface {
	// GetDocument returns the raw document or ErrNotFound.
	GetDocument(ctx context.Context, collection, id string) (json.RawMessage, error)
	// GetCollection returns all documents in a collection keyed by id.
	GetCollection(ctx context.Context, collection string) (map[string]json.RawMessage, error)
	// SetDocument writes one document. With merge, unspecified top-level
	// fields on the remote document are preserved.
	SetDocument(ctx context.Context, collection, id string, data any, merge bool) error
	// BatchWrite applies all ops atomically: either every delete and upsert
	// lands, or none do.
	BatchWrite(ctx context.Context, ops []Op) error
}
