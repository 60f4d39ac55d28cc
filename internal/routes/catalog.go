// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package routes

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jeranaias/hisassist/internal/normalize"
	"github.com/jeranaias/hisassist/internal/portal"
)

// =============================================================================
// CATALOG
// =============================================================================

// DefaultTTL bounds how long a built route list may serve lookups while
// the chat stays open. Permission changes within the window surface
// after at most this long.
const DefaultTTL = 5 * time.Minute

// Catalog memoizes the per-user navigable screen list. Safe for
// concurrent use.
type Catalog struct {
	root    *Route
	appRoot string
	auth    portal.Auth
	cache   *gocache.Cache
}

// NewCatalog creates a catalog over the host route tree. appRoot is the
// shared leading segment ("app"); ttl of zero uses DefaultTTL.
func NewCatalog(root *Route, appRoot string, auth portal.Auth, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{
		root:    root,
		appRoot: appRoot,
		auth:    auth,
		cache:   gocache.New(ttl, 2*ttl),
	}
}

// Routes returns the navigable screens for the current user, building
// and memoizing the list on first use. An anonymous caller gets nil.
func (c *Catalog) Routes() []Info {
	user := c.auth.CurrentUser()
	if user == nil {
		return nil
	}

	if cached, ok := c.cache.Get(user.ID); ok {
		return cached.([]Info)
	}

	var out []Info
	collect(c.root, c.appRoot, nil, user.Permissions, &out)
	c.cache.SetDefault(user.ID, out)
	return out
}

// Invalidate drops every memoized route list. Called on logout and on
// explicit cache-busts.
func (c *Catalog) Invalidate() {
	c.cache.Flush()
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Resolve finds a screen by key. Order: exact key, key with the
// app-root segment stripped, then fuzzy containment.
func (c *Catalog) Resolve(key string) *Info {
	list := c.Routes()
	if len(list) == 0 {
		return nil
	}

	clean := strings.Trim(strings.TrimSpace(key), "/")
	for i := range list {
		if list[i].Key == clean {
			return &list[i]
		}
	}

	stripped := strings.TrimPrefix(clean, c.appRoot+"/")
	if stripped != clean {
		for i := range list {
			if list[i].Key == stripped {
				return &list[i]
			}
		}
	}

	folded := normalize.Fold(strings.ToLower(stripped))
	for i := range list {
		if matches(list[i], folded) {
			return &list[i]
		}
	}
	return nil
}

// FuzzyAll returns the screens matching the given words, used for the
// disambiguation pass before a navigation request goes to the model.
// Screens matching every word win outright; when no screen does, every
// screen matching any word is returned. Words shorter than three runes
// are ignored; duplicates are collapsed.
func (c *Catalog) FuzzyAll(words []string) []Info {
	list := c.Routes()
	if len(list) == 0 {
		return nil
	}

	var folded []string
	for _, w := range words {
		f := normalize.Fold(strings.ToLower(w))
		if len([]rune(f)) >= 3 {
			folded = append(folded, f)
		}
	}
	if len(folded) == 0 {
		return nil
	}

	var all, any []Info
	for i := range list {
		hits := 0
		for _, f := range folded {
			if matches(list[i], f) {
				hits++
			}
		}
		if hits == len(folded) {
			all = append(all, list[i])
		}
		if hits > 0 {
			any = append(any, list[i])
		}
	}
	if len(all) > 0 {
		return all
	}
	return any
}
