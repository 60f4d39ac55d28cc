// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"
)

// =============================================================================
// IDLE TIMER
// =============================================================================

// DefaultIdleTimeout is how long a conversation may sit untouched
// before it resets.
const DefaultIdleTimeout = 5 * time.Minute

// Timer fires a single reset callback after an idle period. Touch
// reschedules it; Stop clears it. Safe for concurrent use.
type Timer struct {
	mu      sync.Mutex
	timeout time.Duration
	onIdle  func()
	timer   *time.Timer
	gen     uint64
}

// NewTimer creates a stopped idle timer. A timeout of zero uses
// DefaultIdleTimeout. onIdle runs on its own goroutine when the idle
// period elapses without a Touch.
func NewTimer(timeout time.Duration, onIdle func()) *Timer {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &Timer{timeout: timeout, onIdle: onIdle}
}

// Touch starts or reschedules the idle countdown. Called on every user
// interaction: opening the chat, sending a message.
func (t *Timer) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.timeout, func() { t.fire(gen) })
}

// Stop clears any pending reset. Called when the chat closes or the
// engine shuts down.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

// Active reports whether a reset is currently scheduled.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// fire clears the scheduled state, then runs the callback. A Touch or
// Stop that raced the firing timer bumps the generation, making the
// stale callback a no-op.
func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	fn := t.onIdle
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
}
