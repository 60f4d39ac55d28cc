// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tool normalizes and executes model tool calls.
//
// The model may request a screen change or a theme switch. Requests
// arrive in three shapes: structured tool_calls, a legacy single
// function_call, or JSON leaked into free text. Normalization funnels
// all three through a name-variant map onto the fixed allow-list (nav,
// theme), drops everything else, and caps execution at two calls per
// turn.
//
// Execution is deliberately paranoid about duplicates: navigation runs
// behind an in-flight flag with a debounce and settle delay, and theme
// switches carry a cooldown, because models repeat tool calls far more
// often than users repeat requests.
package tool
