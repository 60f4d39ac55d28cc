// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"regexp"
	"strings"

	"github.com/jeranaias/hisassist/internal/util"
)

// =============================================================================
// OUTPUT SANITIZER
// =============================================================================

// DefaultMaxOutputRunes caps the length of a finalized assistant reply.
const DefaultMaxOutputRunes = 1500

var (
	// Reasoning blocks some model builds leak into content.
	thinkTagRe = regexp.MustCompile(`(?s)<(think|thinking|reasoning)>.*?</(think|thinking|reasoning)>`)

	// Unclosed reasoning block running to end of output.
	openThinkTagRe = regexp.MustCompile(`(?s)<(think|thinking|reasoning)>.*$`)

	// Tool-call JSON leaked into free text.
	toolJSONRe = regexp.MustCompile(`\{\s*"(name|function)"\s*:\s*"[^"]*"[^{}]*(\{[^{}]*\}[^{}]*)?\}`)

	// Raw URLs; screen changes go through navigation, never links.
	urlRe = regexp.MustCompile(`https?://\S+`)

	// Three or more consecutive newlines.
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// Sanitize cleans accumulated model output for display: reasoning tags,
// tool-call leakage and raw URLs are stripped, blank-line runs are
// collapsed, and the result is trimmed and length-capped. Returns empty
// when nothing usable remains.
func Sanitize(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxOutputRunes
	}

	s = thinkTagRe.ReplaceAllString(s, "")
	s = openThinkTagRe.ReplaceAllString(s, "")
	s = toolJSONRe.ReplaceAllString(s, "")
	s = urlRe.ReplaceAllString(s, "")
	s = multiNewlineRe.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	return util.TruncateRunes(s, maxRunes)
}
