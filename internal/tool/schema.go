// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tool

import (
	"strings"

	"github.com/jeranaias/hisassist/internal/llm"
	"github.com/jeranaias/hisassist/internal/routes"
)

// =============================================================================
// TOOL SCHEMAS
// =============================================================================

// NavSchema builds the navigation tool definition from the screens the
// current user may open. The key enum pins the model to real targets.
func NavSchema(list []routes.Info) llm.Tool {
	enum := make([]string, 0, len(list))
	var desc strings.Builder
	desc.WriteString("Open a portal screen. Available screens: ")
	for i, r := range list {
		enum = append(enum, r.Key)
		if i > 0 {
			desc.WriteString("; ")
		}
		desc.WriteString(r.Key + " = " + r.Title)
	}

	return llm.Tool{
		Type: "function",
		Function: llm.ToolSchema{
			Name:        NameNav,
			Description: desc.String(),
			Parameters: llm.ToolParameters{
				Type: "object",
				Properties: map[string]llm.ToolProperty{
					"key": {
						Type:        "string",
						Description: "Screen key to open",
						Enum:        enum,
					},
				},
				Required: []string{"key"},
			},
		},
	}
}

// ThemeSchema builds the theme tool definition.
func ThemeSchema() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.ToolSchema{
			Name:        NameTheme,
			Description: "Switch the portal between light and dark mode.",
			Parameters: llm.ToolParameters{
				Type: "object",
				Properties: map[string]llm.ToolProperty{
					"mode": {
						Type:        "string",
						Description: "Target mode",
						Enum:        []string{"dark", "light", "toggle"},
					},
				},
			},
		},
	}
}
