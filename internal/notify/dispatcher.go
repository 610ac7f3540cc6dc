package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Adapter delivers a notification to an external channel.
type Adapter interface {
	Name() string
	Deliver(ctx context.Context, n *Notification) error
}

// Record is a delivered (or attempted) notification kept for the UI feed.
type Record struct {
	Notification *Notification `json:"notification"`
	SentAt       time.Time     `json:"sent_at"`
}

// Dispatcher fans formatted payloads out to registered adapters and keeps a
// bounded history for the in-app notification feed. Delivery failures are
// logged and never propagate.
type Dispatcher struct {
	mu       sync.Mutex
	adapters []Adapter
	history  []Record
	maxKeep  int
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher with an empty adapter set.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{maxKeep: 100, logger: logger}
}

// Register adds a delivery adapter.
func (d *Dispatcher) Register(a Adapter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.adapters = append(d.adapters, a)
	d.logger.Info("notification adapter registered", zap.String("adapter", a.Name()))
}

// Publish records the notification and delivers it through every adapter.
// A nil notification (preference-gated formatter declined) is ignored.
func (d *Dispatcher) Publish(ctx context.Context, n *Notification) {
	if n == nil {
		return
	}

	d.mu.Lock()
	d.history = append(d.history, Record{Notification: n, SentAt: time.Now()})
	if len(d.history) > d.maxKeep {
		d.history = d.history[len(d.history)-d.maxKeep:]
	}
	adapters := make([]Adapter, len(d.adapters))
	copy(adapters, d.adapters)
	d.mu.Unlock()

	for _, a := range adapters {
		if err := a.Deliver(ctx, n); err != nil {
			d.logger.Warn("notification delivery failed",
				zap.String("adapter", a.Name()),
				zap.String("title", n.Title),
				zap.Error(err))
		}
	}
}

// History returns the most recent records, newest last.
func (d *Dispatcher) History(limit int) []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	if limit <= 0 || limit > len(d.history) {
		limit = len(d.history)
	}
	out := make([]Record, limit)
	copy(out, d.history[len(d.history)-limit:])
	return out
}
