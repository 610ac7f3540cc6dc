package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and the
// degraded mode the app shell falls into when Postgres is unavailable.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]json.RawMessage // collection -> id -> doc
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]json.RawMessage)}
}

// GetDocument implements Store.
func (m *MemoryStore) GetDocument(_ context.Context, collection, id string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

// GetCollection implements Store.
func (m *MemoryStore) GetCollection(_ context.Context, collection string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(m.docs[collection]))
	for id, doc := range m.docs[collection] {
		out[id] = doc
	}
	return out, nil
}

// SetDocument implements Store.
func (m *MemoryStore) SetDocument(_ context.Context, collection, id string, data any, merge bool) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.put(collection, id, raw, merge)
}

// BatchWrite implements Store. The single lock makes the batch atomic with
// respect to readers; encode errors are impossible here since ops already
// carry raw JSON.
func (m *MemoryStore) BatchWrite(_ context.Context, ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		if op.Delete {
			delete(m.docs[op.Collection], op.ID)
			continue
		}
		if err := m.put(op.Collection, op.ID, op.Data, false); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStore) put(collection, id string, raw json.RawMessage, merge bool) error {
	coll, ok := m.docs[collection]
	if !ok {
		coll = make(map[string]json.RawMessage)
		m.docs[collection] = coll
	}

	if merge {
		if existing, ok := coll[id]; ok {
			merged, err := mergeJSON(existing, raw)
			if err != nil {
				return fmt.Errorf("merge %s/%s: %w", collection, id, err)
			}
			coll[id] = merged
			return nil
		}
	}
	coll[id] = raw
	return nil
}

// mergeJSON overlays incoming top-level fields onto the existing document.
func mergeJSON(existing, incoming json.RawMessage) (json.RawMessage, error) {
	var base, overlay map[string]json.RawMessage
	if err := json.Unmarshal(existing, &base); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(incoming, &overlay); err != nil {
		return nil, err
	}
	for k, v := range overlay {
		base[k] = v
	}
	return json.Marshal(base)
}
