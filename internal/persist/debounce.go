package persist

import (
	"sync"
	"time"
)

// DefaultDebounce is the delay applied to non-immediate persists.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer holds at most one pending timer per bucket. Scheduling a bucket
// that already has a pending timer cancels and reschedules it, so bursts of
// rapid updates collapse into a single delayed fire carrying the last value.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timers map[Bucket]*time.Timer
	closed bool
}

// NewDebouncer creates a debounce table with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		delay:  delay,
		timers: make(map[Bucket]*time.Timer),
	}
}

// Schedule arms (or re-arms) the bucket's timer to call fire after the
// delay. A previously pending fire for the same bucket is superseded and
// never runs.
func (d *Debouncer) Schedule(b Bucket, fire func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if t, ok := d.timers[b]; ok {
		t.Stop()
	}
	d.timers[b] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return
		}
		delete(d.timers, b)
		d.mu.Unlock()
		fire()
	})
}

// Cancel drops any pending timer for the bucket.
func (d *Debouncer) Cancel(b Bucket) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[b]; ok {
		t.Stop()
		delete(d.timers, b)
	}
}

// Close cancels every pending timer so no write fires after the owning
// session ends.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for b, t := range d.timers {
		t.Stop()
		delete(d.timers, b)
	}
}
