// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// ABBREVIATION EXPANSION
// =============================================================================

// abbreviation pairs are applied in order; earlier entries win when two
// patterns could overlap. Expansion runs on already-folded text: `\b` is
// an ASCII word boundary, so both patterns and outputs must be in folded
// form ("đk" arrives here as "dk"). Patterns match whole words only so
// "bc" never fires inside "abc".
type abbreviation struct {
	re  *regexp.Regexp
	out string
}

var abbreviations = []abbreviation{
	{regexp.MustCompile(`\bbc\b`), "bao cao"},
	{regexp.MustCompile(`\btk\b`), "tai khoan"},
	{regexp.MustCompile(`\bmk\b`), "mat khau"},
	{regexp.MustCompile(`\bdk\b`), "dang ky"},
	{regexp.MustCompile(`\bdn\b`), "dang nhap"},
	{regexp.MustCompile(`\bsd\b`), "su dung"},
	{regexp.MustCompile(`\bhdsd\b`), "huong dan su dung"},
	{regexp.MustCompile(`\bko\b`), "khong"},
	{regexp.MustCompile(`\bk\b`), "khong"},
	{regexp.MustCompile(`\bbn\b`), "benh nhan"},
	{regexp.MustCompile(`\bbv\b`), "benh vien"},
	{regexp.MustCompile(`\bgd\b`), "giao dien"},
}

// diacriticStripper removes combining marks after NFD decomposition,
// folding accented Vietnamese letters to their base Latin form.
var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// đ/Đ are standalone letters, not base+combining mark, so NFD does not
// decompose them; fold them explicitly.
var dFolder = strings.NewReplacer("đ", "d", "Đ", "d")

// =============================================================================
// NORMALIZATION
// =============================================================================

// Normalize converts raw user input into the engine's canonical matching
// form: lowercased, diacritics stripped, abbreviations expanded, whitespace
// collapsed. Folding runs first so expansion works purely on ASCII text.
// Deterministic and idempotent.
func Normalize(s string) string {
	s = Fold(strings.ToLower(s))
	for _, a := range abbreviations {
		s = a.re.ReplaceAllString(s, a.out)
	}
	return strings.Join(strings.Fields(s), " ")
}

// Fold strips diacritics from a string without touching case, word choice
// or spacing. Used to compare individual keywords that are already in
// pattern form.
func Fold(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		// transform.String only fails on a misbehaving transformer;
		// fall back to the input rather than dropping the text.
		out = s
	}
	return dFolder.Replace(out)
}

// Words splits a normalized string into its space-separated words.
func Words(s string) []string {
	return strings.Fields(s)
}
