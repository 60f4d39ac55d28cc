// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package normalize prepares free-text user input for pattern matching.
//
// Normalization lowercases, expands common Vietnamese chat abbreviations,
// strips diacritics down to base Latin letters, and collapses whitespace.
// The same normal form is used by both the classifier and the security
// gate so that keyword comparisons always see identical text.
//
// Normalize is a pure, total function: it never fails and is idempotent
// (Normalize(Normalize(s)) == Normalize(s)).
package normalize
