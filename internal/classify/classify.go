// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"math/rand"
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/jeranaias/hisassist/internal/normalize"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Type is the classification outcome category.
type Type int

const (
	// TypeDirect resolves the message locally with a canned response.
	TypeDirect Type = iota
	// TypeLLM forwards the message to the model, optionally with tools.
	TypeLLM
	// TypeBlocked refuses the message with a localized explanation.
	TypeBlocked
)

// String returns the human-readable name of the type.
func (t Type) String() string {
	switch t {
	case TypeDirect:
		return "direct"
	case TypeLLM:
		return "llm"
	case TypeBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Result is the transient outcome of classifying one input.
type Result struct {
	// Type selects the direct/llm/blocked branch.
	Type Type

	// Response is the canned reply for direct and blocked results.
	Response string

	// Intent tags llm results with a coarse category.
	Intent Intent

	// ExtractedCommand is the normalized text to forward to the model
	// for intent results.
	ExtractedCommand string

	// NavKey, when set, requests an immediate local navigation to this
	// route key with no model call (change-password flow).
	NavKey string

	// Language is the detected language of the input; all engine
	// messages for this turn are rendered in it.
	Language Language
}

// =============================================================================
// PASSWORD OVERRIDES
// =============================================================================

// Password flows are special-cased before generic intent matching: they
// must never reach the model and never trigger navigation guessing.
var (
	forgotPasswordRe = regexp.MustCompile(`(quen|mat|reset|cap lai) .*(mat khau)|forgot .*password|quen mat khau`)
	accountLockedRe  = regexp.MustCompile(`(tai khoan|account).*(bi )?(khoa|lock)|(bi )?khoa tai khoan|account locked`)
	changePasswordRe = regexp.MustCompile(`(doi|thay doi|dat lai) .*(mat khau)|change .*password`)
)

// settingsRouteKey is the route the change-password flow navigates to.
const settingsRouteKey = "settings/account"

// =============================================================================
// CLASSIFIER
// =============================================================================

// Config holds classifier tuning and the hotline threaded into refusal
// and escalation text.
type Config struct {
	// Hotline is the human support channel named in every escalation.
	Hotline string

	// MinInputRunes is the length below which unmatched input is
	// answered with a clarification request instead of the capability
	// summary.
	MinInputRunes int

	// Gate configures the security gate applied to intent matches.
	Gate GateConfig
}

// DefaultConfig returns the classifier defaults.
func DefaultConfig() Config {
	return Config{
		Hotline:       "1900 8668",
		MinInputRunes: 8,
		Gate:          DefaultGateConfig(),
	}
}

// Classifier turns free-text input into a ClassifyResult. It is safe for
// concurrent use.
type Classifier struct {
	cfg  Config
	gate *Gate

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a classifier. Zero config fields fall back to defaults.
func New(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.Hotline == "" {
		cfg.Hotline = def.Hotline
	}
	if cfg.MinInputRunes <= 0 {
		cfg.MinInputRunes = def.MinInputRunes
	}
	return &Classifier{
		cfg:  cfg,
		gate: NewGate(cfg.Gate),
		rng:  rand.New(rand.NewSource(rand.Int63())),
	}
}

// Gate exposes the classifier's security gate for reuse by the
// orchestrator's tests.
func (c *Classifier) Gate() *Gate {
	return c.gate
}

// Hotline returns the configured escalation channel.
func (c *Classifier) Hotline() string {
	return c.cfg.Hotline
}

// Classify runs the full pipeline: blocklist, password overrides,
// whitelist (with security gate), fallback. First match wins.
func (c *Classifier) Classify(input string) Result {
	lang := DetectLanguage(input)
	normalized := normalize.Normalize(input)
	words := normalize.Words(normalized)

	// 1. Blocklist short-circuits everything.
	if reason, ok := matchBlocklist(normalized); ok {
		return Result{
			Type:     TypeBlocked,
			Response: refusalMessage(lang, reason, c.cfg.Hotline),
			Language: lang,
		}
	}

	// 2. Password flows bypass generic intent matching.
	if forgotPasswordRe.MatchString(normalized) {
		return Result{
			Type:     TypeDirect,
			Response: forgotPasswordMessage(lang, c.cfg.Hotline),
			Language: lang,
		}
	}
	if accountLockedRe.MatchString(normalized) {
		return Result{
			Type:     TypeDirect,
			Response: accountLockedMessage(lang, c.cfg.Hotline),
			Language: lang,
		}
	}
	if changePasswordRe.MatchString(normalized) {
		return Result{
			Type:     TypeLLM,
			Intent:   IntentNav,
			NavKey:   settingsRouteKey,
			Language: lang,
		}
	}

	// 3. Whitelist.
	if entry, ok := matchWhitelist(normalized, words); ok {
		if entry.intent == IntentNone {
			return Result{
				Type:     TypeDirect,
				Response: c.pickResponse(entry, lang),
				Language: lang,
			}
		}

		verdict := c.gate.Validate(normalized, words, entry.intent)
		if !verdict.Safe {
			return Result{
				Type:     TypeBlocked,
				Response: refusalMessage(lang, blockInjection, c.cfg.Hotline),
				Language: lang,
			}
		}
		return Result{
			Type:             TypeLLM,
			Intent:           entry.intent,
			ExtractedCommand: verdict.CleanCommand,
			Language:         lang,
		}
	}

	// 4. Fallback: short input asks for clarification, longer input gets
	// the capability summary. Both are blocked (no network call).
	if utf8.RuneCountInString(normalized) < c.cfg.MinInputRunes {
		return Result{
			Type:     TypeBlocked,
			Response: notUnderstoodMessage(lang),
			Language: lang,
		}
	}
	return Result{
		Type:     TypeBlocked,
		Response: capabilitiesMessage(lang, c.cfg.Hotline),
		Language: lang,
	}
}

// pickResponse chooses one of an entry's response variants for the
// language, falling back to Vietnamese.
func (c *Classifier) pickResponse(entry *whitelistEntry, lang Language) string {
	variants := entry.responses[lang]
	if len(variants) == 0 {
		variants = entry.responses[LangVI]
	}
	if len(variants) == 0 {
		return ""
	}
	if len(variants) == 1 {
		return variants[0]
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return variants[c.rng.Intn(len(variants))]
}
