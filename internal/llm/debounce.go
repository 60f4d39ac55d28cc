// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// UPDATE DEBOUNCER
// =============================================================================

// DefaultFlushInterval caps how often partial-content updates reach the
// UI. Token frames arrive far faster than a screen needs repainting.
const DefaultFlushInterval = 25 * time.Millisecond

// Debouncer coalesces bursts of partial-content updates. Publish stores
// the latest snapshot; the emit callback fires immediately when the
// rate limit allows, otherwise a trailing timer delivers the newest
// snapshot once the interval elapses. Flush forces out any pending
// snapshot, for the end of a stream.
type Debouncer struct {
	mu      sync.Mutex
	emit    func(snapshot string)
	limiter *rate.Limiter
	pending string
	dirty   bool
	timer   *time.Timer
	closed  bool
}

// NewDebouncer creates a debouncer delivering through emit. An interval
// of zero uses DefaultFlushInterval.
func NewDebouncer(interval time.Duration, emit func(string)) *Debouncer {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &Debouncer{
		emit:    emit,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Publish records the latest content snapshot and schedules delivery.
func (d *Debouncer) Publish(snapshot string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.pending = snapshot
	d.dirty = true

	if d.limiter.Allow() {
		d.deliverLocked()
		d.mu.Unlock()
		return
	}

	if d.timer == nil {
		delay := d.limiter.Reserve().Delay()
		d.timer = time.AfterFunc(delay, d.flushTimer)
	}
	d.mu.Unlock()
}

// Flush delivers any pending snapshot immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dirty && !d.closed {
		d.deliverLocked()
	}
}

// Close flushes and stops the debouncer. Further Publish calls are
// dropped.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.dirty {
		d.deliverLocked()
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// flushTimer is the trailing-edge delivery.
func (d *Debouncer) flushTimer() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timer = nil
	if d.dirty && !d.closed {
		d.deliverLocked()
	}
}

// deliverLocked emits the pending snapshot; caller holds the lock.
func (d *Debouncer) deliverLocked() {
	snapshot := d.pending
	d.dirty = false
	// Emit under the lock keeps snapshots ordered; callbacks must not
	// call back into the debouncer.
	d.emit(snapshot)
}
