package persist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// writeTask is one queued remote write.
type writeTask struct {
	label string
	run   func(context.Context) error
	done  chan error
}

// Writer executes remote writes strictly one at a time, in enqueue order,
// across all buckets. A failing task is logged and does not halt the queue.
type Writer struct {
	tasks     chan writeTask
	stopped   chan struct{}
	opTimeout time.Duration

	mu     sync.Mutex
	closed bool

	logger *zap.Logger
}

// NewWriter creates a serial write queue and starts its worker.
func NewWriter(opTimeout time.Duration, logger *zap.Logger) *Writer {
	if opTimeout <= 0 {
		opTimeout = 30 * time.Second
	}
	w := &Writer{
		tasks:     make(chan writeTask, 128),
		stopped:   make(chan struct{}),
		opTimeout: opTimeout,
		logger:    logger,
	}
	go w.loop()
	return w
}

func (w *Writer) loop() {
	defer close(w.stopped)
	for t := range w.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), w.opTimeout)
		err := t.run(ctx)
		cancel()
		if err != nil {
			w.logger.Warn("queued write failed",
				zap.String("op", t.label),
				zap.Error(err))
		}
		if t.done != nil {
			t.done <- err
		}
	}
}

// Enqueue appends a write to the queue and returns a one-shot channel that
// receives the write's result. After Close, the returned channel resolves
// immediately with nil and nothing is written.
func (w *Writer) Enqueue(label string, fn func(context.Context) error) <-chan error {
	done := make(chan error, 1)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		done <- nil
		return done
	}
	w.tasks <- writeTask{label: label, run: fn, done: done}
	w.mu.Unlock()

	return done
}

// Close stops accepting writes, drains what is already queued, and blocks
// until the worker exits.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.tasks)
	w.mu.Unlock()

	<-w.stopped
}
