package persist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dvilela/sistema-vida/internal/player"
	"github.com/dvilela/sistema-vida/internal/remote"
	"go.uber.org/zap"
)

// recordingStore wraps a MemoryStore and records every write for assertions.
type recordingStore struct {
	*remote.MemoryStore

	mu      sync.Mutex
	sets    []recordedSet
	batches [][]remote.Op
	failSet error
	block   chan struct{} // when non-nil, SetDocument waits on it
}

type recordedSet struct {
	Collection string
	ID         string
	Data       []byte
	Merge      bool
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: remote.NewMemoryStore()}
}

func (r *recordingStore) SetDocument(ctx context.Context, coll, id string, data any, merge bool) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	if r.failSet != nil {
		err := r.failSet
		r.mu.Unlock()
		return err
	}
	raw, _ := json.Marshal(data)
	r.sets = append(r.sets, recordedSet{coll, id, raw, merge})
	r.mu.Unlock()
	return r.MemoryStore.SetDocument(ctx, coll, id, data, merge)
}

func (r *recordingStore) BatchWrite(ctx context.Context, ops []remote.Op) error {
	r.mu.Lock()
	r.batches = append(r.batches, ops)
	r.mu.Unlock()
	return r.MemoryStore.BatchWrite(ctx, ops)
}

func (r *recordingStore) setCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sets)
}

func TestDebounceCollapsesBurst(t *testing.T) {
	store := newRecordingStore()
	p := NewPipeline(store, "u1", 30*time.Millisecond, zap.NewNop())
	defer p.Close()

	for _, name := range []string{"A", "B", "C"} {
		p.Persist(BucketProfile, &player.Profile{ID: "u1", Name: name}, false)
	}

	time.Sleep(150 * time.Millisecond)

	if got := store.setCount(); got != 1 {
		t.Fatalf("writes = %d, want exactly 1", got)
	}
	store.mu.Lock()
	last := store.sets[0]
	store.mu.Unlock()
	var prof player.Profile
	json.Unmarshal(last.Data, &prof)
	if prof.Name != "C" {
		t.Errorf("persisted value = %q, want last write C", prof.Name)
	}
	if !last.Merge {
		t.Error("profile bucket must merge-write")
	}
}

func TestImmediateBypassesDebounce(t *testing.T) {
	store := newRecordingStore()
	p := NewPipeline(store, "u1", time.Hour, zap.NewNop())
	defer p.Close()

	done := p.Persist(BucketProfile, &player.Profile{ID: "u1"}, true)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("immediate persist: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("immediate persist did not complete")
	}
	if store.setCount() != 1 {
		t.Fatal("immediate write did not reach store")
	}
}

func TestBatchReconciliation(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	p := NewPipeline(store, "u1", DefaultDebounce, zap.NewNop())
	defer p.Close()

	// Seed remote ids {1,2,3}.
	for _, id := range []string{"1", "2", "3"} {
		store.MemoryStore.SetDocument(ctx, "users/u1/goals", id, player.Goal{ID: id}, false)
	}

	// New local set {2,3,4}.
	goals := []player.Goal{{ID: "2"}, {ID: "3"}, {ID: "4"}}
	if err := p.Flush(ctx, BucketGoals, goals); err != nil {
		t.Fatal(err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(store.batches))
	}
	deletes, upserts := 0, 0
	for _, op := range store.batches[0] {
		if op.Delete {
			deletes++
			if op.ID != "1" {
				t.Errorf("unexpected delete of id %s", op.ID)
			}
		} else {
			upserts++
		}
	}
	if deletes != 1 || upserts != 3 {
		t.Fatalf("deletes=%d upserts=%d, want 1 and 3", deletes, upserts)
	}
}

func TestSerialOrderAcrossBuckets(t *testing.T) {
	store := newRecordingStore()
	store.block = make(chan struct{})
	p := NewPipeline(store, "u1", DefaultDebounce, zap.NewNop())
	defer p.Close()

	first := p.Persist(BucketProfile, &player.Profile{ID: "u1"}, true)
	second := p.Persist(BucketRoutine, &player.Routine{}, true)

	// Second write must not run while the first is blocked.
	select {
	case <-second:
		t.Fatal("second write completed before first")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.block)
	if err := <-first; err != nil {
		t.Fatal(err)
	}
	if err := <-second; err != nil {
		t.Fatal(err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.sets[0].Collection != "users" || store.sets[1].ID != "main" {
		t.Errorf("writes out of order: %+v", store.sets)
	}
}

func TestFailedWriteDoesNotHaltQueue(t *testing.T) {
	store := newRecordingStore()
	store.failSet = errors.New("quota exceeded")
	p := NewPipeline(store, "u1", DefaultDebounce, zap.NewNop())
	defer p.Close()

	if err := <-p.Persist(BucketProfile, &player.Profile{ID: "u1"}, true); err == nil {
		t.Fatal("expected propagated failure")
	}

	store.mu.Lock()
	store.failSet = nil
	store.mu.Unlock()

	if err := <-p.Persist(BucketProfile, &player.Profile{ID: "u1"}, true); err != nil {
		t.Fatalf("queue halted after failure: %v", err)
	}
}

func TestRescheduleSupersedesPendingWrite(t *testing.T) {
	store := newRecordingStore()
	p := NewPipeline(store, "u1", 40*time.Millisecond, zap.NewNop())
	defer p.Close()

	p.Persist(BucketProfile, &player.Profile{ID: "u1", Name: "old"}, false)
	time.Sleep(20 * time.Millisecond)
	p.Persist(BucketProfile, &player.Profile{ID: "u1", Name: "new"}, false)
	time.Sleep(30 * time.Millisecond) // original deadline passed, rescheduled one has not

	if got := store.setCount(); got != 0 {
		t.Fatalf("superseded write fired: %d writes", got)
	}
	time.Sleep(60 * time.Millisecond)
	if got := store.setCount(); got != 1 {
		t.Fatalf("writes = %d, want 1", got)
	}
}

func TestCloseCancelsPendingTimers(t *testing.T) {
	store := newRecordingStore()
	p := NewPipeline(store, "u1", 30*time.Millisecond, zap.NewNop())

	p.Persist(BucketProfile, &player.Profile{ID: "u1"}, false)
	p.Close()

	time.Sleep(80 * time.Millisecond)
	if got := store.setCount(); got != 0 {
		t.Fatalf("write fired after Close: %d", got)
	}
}
