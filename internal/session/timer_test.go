// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimer_FiresAfterIdle(t *testing.T) {
	var fired atomic.Int32
	tm := NewTimer(20*time.Millisecond, func() { fired.Add(1) })

	tm.Touch()
	time.Sleep(60 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Errorf("fired %d times, want 1", got)
	}
	if tm.Active() {
		t.Error("timer should be inactive after firing")
	}
}

func TestTimer_TouchReschedules(t *testing.T) {
	var fired atomic.Int32
	tm := NewTimer(50*time.Millisecond, func() { fired.Add(1) })

	tm.Touch()
	time.Sleep(30 * time.Millisecond)
	tm.Touch() // reset the countdown mid-way
	time.Sleep(30 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Errorf("fired %d times before the rescheduled deadline", got)
	}

	time.Sleep(40 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("fired %d times, want exactly 1", got)
	}
}

func TestTimer_StopClears(t *testing.T) {
	var fired atomic.Int32
	tm := NewTimer(20*time.Millisecond, func() { fired.Add(1) })

	tm.Touch()
	tm.Stop()
	time.Sleep(50 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Errorf("fired %d times after Stop", got)
	}
	if tm.Active() {
		t.Error("timer should be inactive after Stop")
	}
}

func TestTimer_StopWithoutTouch(t *testing.T) {
	tm := NewTimer(time.Minute, nil)
	tm.Stop() // must not panic
	if tm.Active() {
		t.Error("never-touched timer should be inactive")
	}
}

func TestTimer_ZeroTimeoutUsesDefault(t *testing.T) {
	tm := NewTimer(0, nil)
	if tm.timeout != DefaultIdleTimeout {
		t.Errorf("timeout = %v, want default", tm.timeout)
	}
}
