// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"strings"
	"unicode/utf8"
)

// =============================================================================
// SECURITY GATE
// =============================================================================

// Verdict is the outcome of a security-gate validation.
type Verdict struct {
	// Safe is true when the input may proceed on the intent's path.
	Safe bool

	// Reason describes why the input was rejected. Empty when Safe.
	Reason string

	// CleanCommand is the normalized text to forward. Empty unless Safe.
	CleanCommand string
}

// GateConfig holds the tuning constants of the security gate. The values
// are empirically chosen and adjustable through the config file.
type GateConfig struct {
	// MaxCommandRunes rejects inputs longer than this outright.
	MaxCommandRunes int

	// MinWords is the word count above which the density check applies.
	MinWords int

	// MinKeywordDensity is the minimum fraction of input words that must
	// overlap the intent's keyword vocabulary.
	MinKeywordDensity float64
}

// DefaultGateConfig returns the gate defaults.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MaxCommandRunes:   200,
		MinWords:          5,
		MinKeywordDensity: 0.2,
	}
}

// Gate validates intent matches against length and keyword-density
// thresholds. A single matched keyword must not be able to smuggle a
// long, unrelated payload onto the privileged tool-calling path.
type Gate struct {
	cfg GateConfig
}

// NewGate creates a security gate with the given configuration.
func NewGate(cfg GateConfig) *Gate {
	if cfg.MaxCommandRunes <= 0 {
		cfg.MaxCommandRunes = 200
	}
	if cfg.MinWords <= 0 {
		cfg.MinWords = 5
	}
	if cfg.MinKeywordDensity <= 0 {
		cfg.MinKeywordDensity = 0.2
	}
	return &Gate{cfg: cfg}
}

// Validate checks a normalized input against the vocabulary registered
// for an intent. Inputs of MinWords words or fewer pass the density check
// unconditionally; the whitelist match itself is considered sufficient.
func (g *Gate) Validate(normalized string, words []string, intent Intent) Verdict {
	if utf8.RuneCountInString(normalized) > g.cfg.MaxCommandRunes {
		return Verdict{Safe: false, Reason: "input exceeds maximum command length"}
	}

	if len(words) > g.cfg.MinWords {
		density := keywordDensity(words, intentVocabulary(intent))
		if density < g.cfg.MinKeywordDensity {
			return Verdict{Safe: false, Reason: "keyword density below threshold"}
		}
	}

	return Verdict{Safe: true, CleanCommand: normalized}
}

// keywordDensity returns the fraction of words overlapping the vocabulary.
// A word overlaps on exact equality, or on substring containment in either
// direction when the contained side is at least three runes (so "mo"
// inside "mot" does not count as a hit).
func keywordDensity(words, vocab []string) float64 {
	if len(words) == 0 {
		return 0
	}

	hits := 0
	for _, w := range words {
		if overlapsVocabulary(w, vocab) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

func overlapsVocabulary(word string, vocab []string) bool {
	for _, tok := range vocab {
		if word == tok {
			return true
		}
		if utf8.RuneCountInString(tok) >= 3 && strings.Contains(word, tok) {
			return true
		}
		if utf8.RuneCountInString(word) >= 3 && strings.Contains(tok, word) {
			return true
		}
	}
	return false
}
