// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package portal

import (
	"fmt"
	"strings"
	"sync"
)

// =============================================================================
// IN-MEMORY AUTH
// =============================================================================

// MemoryAuth is an in-memory Auth implementation used by tests and the
// demo binary. All methods are safe for concurrent use.
type MemoryAuth struct {
	mu       sync.Mutex
	loggedIn bool
	user     *User
	token    string
	subs     map[int]func(bool)
	nextSub  int
}

// NewMemoryAuth creates a MemoryAuth with no signed-in user.
func NewMemoryAuth() *MemoryAuth {
	return &MemoryAuth{subs: make(map[int]func(bool))}
}

// Login signs a user in and notifies subscribers.
func (a *MemoryAuth) Login(user *User, token string) {
	a.mu.Lock()
	a.loggedIn = true
	a.user = user
	a.token = token
	subs := a.snapshotSubs()
	a.mu.Unlock()

	for _, fn := range subs {
		fn(true)
	}
}

// Logout signs the current user out and notifies subscribers.
func (a *MemoryAuth) Logout() {
	a.mu.Lock()
	a.loggedIn = false
	a.user = nil
	a.token = ""
	subs := a.snapshotSubs()
	a.mu.Unlock()

	for _, fn := range subs {
		fn(false)
	}
}

// IsLoggedIn reports whether a user is signed in.
func (a *MemoryAuth) IsLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loggedIn
}

// CurrentUser returns the signed-in user, or nil.
func (a *MemoryAuth) CurrentUser() *User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

// AccessToken returns the current bearer token, or empty.
func (a *MemoryAuth) AccessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

// Subscribe registers a login-state callback.
func (a *MemoryAuth) Subscribe(fn func(bool)) (cancel func()) {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

// snapshotSubs copies subscriber callbacks; caller must hold the lock.
func (a *MemoryAuth) snapshotSubs() []func(bool) {
	out := make([]func(bool), 0, len(a.subs))
	for _, fn := range a.subs {
		out = append(out, fn)
	}
	return out
}

// =============================================================================
// IN-MEMORY THEME
// =============================================================================

// MemoryTheme is an in-memory Theme implementation.
type MemoryTheme struct {
	mu   sync.Mutex
	dark bool
}

// NewMemoryTheme creates a theme in light mode.
func NewMemoryTheme() *MemoryTheme {
	return &MemoryTheme{}
}

// IsDark reports whether dark mode is active.
func (t *MemoryTheme) IsDark() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dark
}

// Toggle flips between dark and light mode.
func (t *MemoryTheme) Toggle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dark = !t.dark
}

// =============================================================================
// IN-MEMORY NAVIGATOR
// =============================================================================

// MemoryNavigator is an in-memory Navigator that records the current
// URL and the full navigation history.
type MemoryNavigator struct {
	mu      sync.Mutex
	current string
	history []string

	// Known holds navigable URLs. An empty set accepts everything.
	known map[string]bool
}

// NewMemoryNavigator creates a navigator positioned at start.
func NewMemoryNavigator(start string) *MemoryNavigator {
	return &MemoryNavigator{current: start}
}

// Allow restricts navigation to the given URLs.
func (n *MemoryNavigator) Allow(urls ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.known == nil {
		n.known = make(map[string]bool)
	}
	for _, u := range urls {
		n.known[normalizeURL(u)] = true
	}
}

// CurrentURL returns the current location.
func (n *MemoryNavigator) CurrentURL() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// History returns every URL navigated to, in order.
func (n *MemoryNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.history))
	copy(out, n.history)
	return out
}

// NavigateByURL moves to url, recording it in the history.
func (n *MemoryNavigator) NavigateByURL(url string) error {
	clean := normalizeURL(url)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.known != nil && !n.known[clean] {
		return fmt.Errorf("navigate: unknown url %q", url)
	}
	n.current = clean
	n.history = append(n.history, clean)
	return nil
}

// normalizeURL strips a trailing slash so "reports/" and "reports"
// compare equal.
func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if len(u) > 1 {
		u = strings.TrimSuffix(u, "/")
	}
	return u
}
