// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package classify decides what happens to a user message before any
// network call is made.
//
// Classification applies, in order:
//
//  1. Blocklist - ordered regexes covering prompt injection, harmful
//     content and out-of-scope topics. Any hit short-circuits to a
//     refusal; the blocklist always wins over the whitelist.
//  2. Password overrides - forgot/locked/change-password flows resolved
//     locally without the model.
//  3. Whitelist - ordered pattern entries producing either a canned
//     direct response or an intent tag (nav, theme, it_support,
//     feature_help). Intent matches must additionally pass the
//     SecurityGate keyword-density check.
//  4. Fallback - anything unmatched is blocked with a clarification or
//     capability-summary message.
//
// All matching runs on the normalized form of the input (see package
// normalize). Responses are produced in the language detected per input.
package classify
