// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tool

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/jeranaias/hisassist/internal/llm"
)

// =============================================================================
// TOOL NAMES
// =============================================================================

// Allow-listed tool names.
const (
	NameNav   = "nav"
	NameTheme = "theme"
)

// MaxCallsPerTurn bounds side effects from a single model turn.
const MaxCallsPerTurn = 2

// nameVariants maps every recognized spelling the model may emit onto
// the canonical allow-list.
var nameVariants = map[string]string{
	"nav":              NameNav,
	"navigate":         NameNav,
	"navigation":       NameNav,
	"navigate_to":      NameNav,
	"open_screen":      NameNav,
	"open_page":        NameNav,
	"goto":             NameNav,
	"go_to_screen":     NameNav,
	"theme":            NameTheme,
	"toggle_theme":     NameTheme,
	"switch_theme":     NameTheme,
	"change_theme":     NameTheme,
	"set_theme":        NameTheme,
	"dark_mode":        NameTheme,
	"toggle_dark_mode": NameTheme,
}

// Call is one normalized, allow-listed tool invocation.
type Call struct {
	Name string
	Args llm.Args
}

// inlineToolRe extracts tool-call JSON the model leaked into free text
// instead of the structured channel.
var inlineToolRe = regexp.MustCompile(`\{[^{}]*"name"\s*:\s*"([a-zA-Z_]+)"[^{}]*"(?:arguments|parameters|input)"\s*:\s*(\{[^{}]*\})[^{}]*\}`)

// NormalizeCalls funnels structured tool calls plus any inline leakage
// in the free text onto the allow-list. Unrecognized names are dropped,
// duplicates collapse to the first occurrence, and the result is capped
// at MaxCallsPerTurn.
func NormalizeCalls(raw []llm.ToolCall, freeText string) []Call {
	var out []Call
	seen := make(map[string]bool)

	add := func(name string, args llm.Args) {
		canonical, ok := nameVariants[strings.ToLower(strings.TrimSpace(name))]
		if !ok || seen[canonical] || len(out) >= MaxCallsPerTurn {
			return
		}
		if args == nil {
			args = llm.Args{}
		}
		seen[canonical] = true
		out = append(out, Call{Name: canonical, Args: args})
	}

	for _, tc := range raw {
		add(tc.Function.Name, tc.Function.Arguments)
	}

	// Fallback: models without native tool support sometimes print the
	// call as JSON in the reply body.
	if len(out) == 0 && freeText != "" {
		for _, m := range inlineToolRe.FindAllStringSubmatch(freeText, MaxCallsPerTurn) {
			var args llm.Args
			if err := json.Unmarshal([]byte(m[2]), &args); err != nil {
				args = llm.Args{}
			}
			add(m[1], args)
		}
	}

	return out
}
