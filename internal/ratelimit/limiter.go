// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ratelimit

import (
	"sync"
	"time"
)

// =============================================================================
// LIMITER
// =============================================================================

const (
	// DefaultWindow is the sliding window over which sends are counted.
	DefaultWindow = 1 * time.Minute

	// DefaultCeiling is the number of sends allowed inside the window.
	DefaultCeiling = 10

	// DefaultCooldown is how long sends stay rejected after the ceiling
	// is hit.
	DefaultCooldown = 30 * time.Second
)

// Config holds limiter tunables. Zero fields fall back to defaults.
type Config struct {
	Window   time.Duration
	Ceiling  int
	Cooldown time.Duration
}

// DefaultConfig returns the limiter defaults.
func DefaultConfig() Config {
	return Config{
		Window:   DefaultWindow,
		Ceiling:  DefaultCeiling,
		Cooldown: DefaultCooldown,
	}
}

// Decision is the outcome of one send attempt.
type Decision struct {
	// OK reports whether the send may proceed.
	OK bool

	// RetryAfter is how long until sends are accepted again. Zero when
	// OK is true.
	RetryAfter time.Duration
}

// Limiter is a sliding-window send limiter with a hard cooldown.
// Safe for concurrent use.
type Limiter struct {
	mu sync.Mutex

	window   time.Duration
	ceiling  int
	cooldown time.Duration

	sends         []time.Time
	cooldownUntil time.Time
}

// New creates a limiter. Zero config fields fall back to defaults.
func New(cfg Config) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = DefaultCeiling
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return &Limiter{
		window:   cfg.Window,
		ceiling:  cfg.Ceiling,
		cooldown: cfg.Cooldown,
	}
}

// Allow records a send attempt at now and decides whether it proceeds.
// Hitting the ceiling rejects the attempt and starts the cooldown; while
// the cooldown runs, every attempt is rejected without touching the
// window.
func (l *Limiter) Allow(now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Before(l.cooldownUntil) {
		return Decision{RetryAfter: l.cooldownUntil.Sub(now)}
	}

	l.prune(now)

	if len(l.sends) >= l.ceiling {
		l.cooldownUntil = now.Add(l.cooldown)
		return Decision{RetryAfter: l.cooldown}
	}

	l.sends = append(l.sends, now)
	return Decision{OK: true}
}

// Reset clears the window and any active cooldown.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sends = nil
	l.cooldownUntil = time.Time{}
}

// prune drops timestamps older than the window; caller holds the lock.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.sends) && !l.sends[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.sends = append(l.sends[:0], l.sends[i:]...)
	}
}
