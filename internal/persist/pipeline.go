package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/dvilela/sistema-vida/internal/remote"
	"go.uber.org/zap"
)

// Pipeline is the public persistence surface: debounce-or-immediate entry,
// serial execution, and per-bucket write semantics against the remote store.
type Pipeline struct {
	store    remote.Store
	writer   *Writer
	debounce *Debouncer
	userID   string
	logger   *zap.Logger
}

// NewPipeline wires a pipeline for one user's session.
func NewPipeline(store remote.Store, userID string, delay time.Duration, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:    store,
		writer:   NewWriter(30*time.Second, logger),
		debounce: NewDebouncer(delay),
		userID:   userID,
		logger:   logger,
	}
}

// Persist schedules a bucket write. Immediate writes bypass the debounce
// table and their result channel reports the outcome; debounced writes
// return nil and surface failures through the log only. In both modes the
// caller's in-memory state is already updated — remote failure never rolls
// it back.
func (p *Pipeline) Persist(b Bucket, data any, immediate bool) <-chan error {
	flush := func(ctx context.Context) error {
		return p.Flush(ctx, b, data)
	}
	if immediate {
		return p.writer.Enqueue(string(b), flush)
	}
	p.debounce.Schedule(b, func() {
		p.writer.Enqueue(string(b), flush)
		p.logger.Debug("debounced write enqueued", zap.String("bucket", string(b)))
	})
	return nil
}

// Flush writes one bucket synchronously with its bucket-kind semantics:
// single-document buckets merge-write; multi-document buckets reconcile the
// remote collection against the new local id set in one atomic batch.
func (p *Pipeline) Flush(ctx context.Context, b Bucket, data any) error {
	if singleDocument(b) {
		coll, id := DocumentPath(b, p.userID)
		return p.store.SetDocument(ctx, coll, id, data, true)
	}

	coll := CollectionPath(b, p.userID)
	if coll == "" {
		return fmt.Errorf("bucket %s: no collection path", b)
	}

	existing, err := p.store.GetCollection(ctx, coll)
	if err != nil {
		return fmt.Errorf("reconcile %s: read existing: %w", b, err)
	}
	docs, err := bucketDocuments(b, data)
	if err != nil {
		return err
	}

	newIDs := make(map[string]bool, len(docs))
	for _, d := range docs {
		newIDs[d.ID] = true
	}

	ops := make([]remote.Op, 0, len(docs)+len(existing))
	for id := range existing {
		if !newIDs[id] {
			ops = append(ops, remote.Delete(coll, id))
		}
	}
	// The full new set is always re-upserted, unchanged documents included.
	for _, d := range docs {
		op, err := remote.Upsert(coll, d.ID, d.Data)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}
	return p.store.BatchWrite(ctx, ops)
}

// Close cancels all pending debounce timers and drains the serial queue.
func (p *Pipeline) Close() {
	p.debounce.Close()
	p.writer.Close()
}
