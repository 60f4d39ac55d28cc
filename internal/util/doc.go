// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string helpers shared across the engine.
//
// All helpers are UTF-8 aware: truncation counts runes, never bytes, so
// Vietnamese text is never cut mid-character.
package util
