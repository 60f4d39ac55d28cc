// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tool

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/hisassist/internal/classify"
	"github.com/jeranaias/hisassist/internal/portal"
	"github.com/jeranaias/hisassist/internal/routes"
)

// =============================================================================
// EXECUTOR CONFIGURATION
// =============================================================================

const (
	// DefaultNavDebounce delays the actual navigation briefly so rapid
	// duplicate calls collapse into one screen change.
	DefaultNavDebounce = 150 * time.Millisecond

	// DefaultNavSettle is how long the in-flight flag stays up after a
	// navigation fires.
	DefaultNavSettle = 800 * time.Millisecond

	// DefaultThemeCooldown rejects near-duplicate theme switches.
	DefaultThemeCooldown = 2 * time.Second
)

// Config holds executor tunables. Zero fields fall back to defaults.
type Config struct {
	NavDebounce   time.Duration
	NavSettle     time.Duration
	ThemeCooldown time.Duration
}

// DefaultConfig returns the executor defaults.
func DefaultConfig() Config {
	return Config{
		NavDebounce:   DefaultNavDebounce,
		NavSettle:     DefaultNavSettle,
		ThemeCooldown: DefaultThemeCooldown,
	}
}

// =============================================================================
// EXECUTOR
// =============================================================================

// Executor carries out normalized tool calls against the host portal.
// Safe for concurrent use.
type Executor struct {
	navigator portal.Navigator
	theme     portal.Theme
	catalog   *routes.Catalog
	logger    *zap.Logger

	navDebounce   time.Duration
	navSettle     time.Duration
	themeCooldown time.Duration

	mu          sync.Mutex
	navPending  bool
	lastToggle  time.Time
}

// NewExecutor creates an executor over the host services. A nil logger
// disables logging.
func NewExecutor(nav portal.Navigator, theme portal.Theme, catalog *routes.Catalog, cfg Config, logger *zap.Logger) *Executor {
	def := DefaultConfig()
	if cfg.NavDebounce <= 0 {
		cfg.NavDebounce = def.NavDebounce
	}
	if cfg.NavSettle <= 0 {
		cfg.NavSettle = def.NavSettle
	}
	if cfg.ThemeCooldown <= 0 {
		cfg.ThemeCooldown = def.ThemeCooldown
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		navigator:     nav,
		theme:         theme,
		catalog:       catalog,
		logger:        logger,
		navDebounce:   cfg.NavDebounce,
		navSettle:     cfg.NavSettle,
		themeCooldown: cfg.ThemeCooldown,
	}
}

// NavPending reports whether a navigation is queued or settling.
func (e *Executor) NavPending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.navPending
}

// Execute runs each call in order and returns one localized
// confirmation or error string per call.
func (e *Executor) Execute(calls []Call, lang classify.Language) []string {
	if len(calls) > MaxCallsPerTurn {
		calls = calls[:MaxCallsPerTurn]
	}

	out := make([]string, 0, len(calls))
	for _, c := range calls {
		switch c.Name {
		case NameNav:
			out = append(out, e.execNav(c, lang))
		case NameTheme:
			out = append(out, e.execTheme(c, lang))
		}
	}
	return out
}

// =============================================================================
// NAVIGATION
// =============================================================================

// execNav resolves the target and performs a debounced navigation.
func (e *Executor) execNav(c Call, lang classify.Language) string {
	key := firstArg(c.Args, "key", "url", "screen", "route")
	target := e.catalog.Resolve(key)
	if target == nil {
		e.logger.Warn("nav target not found", zap.String("key", key))
		return navNotFoundMessage(lang, key)
	}

	if samePath(e.navigator.CurrentURL(), target.FullURL) {
		return alreadyHereMessage(lang, target.Title)
	}

	e.mu.Lock()
	if e.navPending {
		// A navigation is already queued; treat the duplicate as done.
		e.mu.Unlock()
		return navConfirmMessage(lang, target.Title)
	}
	e.navPending = true
	e.mu.Unlock()

	url := target.FullURL
	title := target.Title
	time.AfterFunc(e.navDebounce, func() {
		if err := e.navigator.NavigateByURL(url); err != nil {
			e.logger.Warn("navigation failed", zap.String("url", url), zap.Error(err))
		} else {
			e.logger.Info("navigated", zap.String("url", url))
		}
		time.AfterFunc(e.navSettle, func() {
			e.mu.Lock()
			e.navPending = false
			e.mu.Unlock()
		})
	})

	return navConfirmMessage(lang, title)
}

// samePath compares URLs ignoring a trailing slash.
func samePath(a, b string) bool {
	trim := func(s string) string {
		if len(s) > 1 {
			s = strings.TrimSuffix(s, "/")
		}
		return s
	}
	return trim(a) == trim(b)
}

// =============================================================================
// THEME
// =============================================================================

// execTheme applies a theme switch with a duplicate cooldown.
func (e *Executor) execTheme(c Call, lang classify.Language) string {
	e.mu.Lock()
	if time.Since(e.lastToggle) < e.themeCooldown {
		dark := e.theme.IsDark()
		e.mu.Unlock()
		return themeResultMessage(lang, dark)
	}
	e.lastToggle = time.Now()
	e.mu.Unlock()

	mode := themeMode(firstArg(c.Args, "mode", "theme", "value"))
	dark := e.theme.IsDark()

	switch mode {
	case "dark":
		if !dark {
			e.theme.Toggle()
		}
		dark = true
	case "light":
		if dark {
			e.theme.Toggle()
		}
		dark = false
	default: // toggle
		e.theme.Toggle()
		dark = !dark
	}

	e.logger.Info("theme switched", zap.Bool("dark", dark))
	return themeResultMessage(lang, dark)
}

// themeMode folds localized mode spellings onto dark/light/toggle.
func themeMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "dark", "toi", "tối", "đen", "den":
		return "dark"
	case "light", "sang", "sáng", "trang", "trắng":
		return "light"
	default:
		return "toggle"
	}
}

// firstArg returns the first non-empty string argument among keys.
func firstArg(args map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := args[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
