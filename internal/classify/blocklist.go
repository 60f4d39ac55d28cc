// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import "regexp"

// =============================================================================
// BLOCKLIST
// =============================================================================

// blockReason distinguishes the refusal message used for a blocklist hit.
type blockReason int

const (
	blockInjection blockReason = iota
	blockHarmful
	blockOffTopic
)

// blockRule is a single blocklist entry. Patterns are written against the
// normalized (lowercased, diacritic-stripped) form of the input.
type blockRule struct {
	re     *regexp.Regexp
	reason blockReason
}

// blockRules are checked in order; the first hit wins and always takes
// precedence over any whitelist match.
var blockRules = []blockRule{
	// Prompt-injection phrasing.
	{regexp.MustCompile(`ignore (all |the )?(previous|prior|above) (instructions|prompts?)`), blockInjection},
	{regexp.MustCompile(`(bo qua|quen het|xoa het) (cac |moi |nhung )?(huong dan|chi dan|lenh|yeu cau)( truoc| tren)?`), blockInjection},
	{regexp.MustCompile(`system prompt`), blockInjection},
	{regexp.MustCompile(`jailbreak`), blockInjection},
	{regexp.MustCompile(`\bdong vai\b`), blockInjection},
	{regexp.MustCompile(`pretend (you are|to be)`), blockInjection},
	{regexp.MustCompile(`act as (a|an|the)\b`), blockInjection},
	{regexp.MustCompile(`developer mode`), blockInjection},
	{regexp.MustCompile(`(reveal|show|in ra) .*(prompt|instruction)`), blockInjection},

	// Harmful content requests.
	{regexp.MustCompile(`(che tao|cach lam|huong dan lam) (bom|vu khi|thuoc no)`), blockHarmful},
	{regexp.MustCompile(`(make|build) (a )?(bomb|weapon|explosive)`), blockHarmful},
	{regexp.MustCompile(`(hack|be khoa|crack) (tai khoan|he thong|mat khau)`), blockHarmful},
	{regexp.MustCompile(`(steal|hack|bypass) .*(password|account|login)`), blockHarmful},

	// Out of scope: coding requests.
	{regexp.MustCompile(`(viet|sua|debug) (code|ham|chuong trinh|script)`), blockOffTopic},
	{regexp.MustCompile(`(write|fix|debug) .*(code|function|script|program)`), blockOffTopic},
	{regexp.MustCompile(`\b(python|javascript|typescript|golang|java|sql query)\b`), blockOffTopic},

	// Out of scope: general knowledge.
	{regexp.MustCompile(`thu do (cua|nuoc)`), blockOffTopic},
	{regexp.MustCompile(`(capital of|president of|population of)`), blockOffTopic},
	{regexp.MustCompile(`(lich su|dia ly) (the gioi|viet nam|nuoc)`), blockOffTopic},

	// Out of scope: finance and politics.
	{regexp.MustCompile(`(chung khoan|co phieu|bitcoin|tien ao|gia vang)`), blockOffTopic},
	{regexp.MustCompile(`(stock market|crypto|investment advice)`), blockOffTopic},
	{regexp.MustCompile(`(chinh tri|bau cu|dang phai)`), blockOffTopic},
	{regexp.MustCompile(`\b(election|politics|political)\b`), blockOffTopic},
}

// matchBlocklist returns the first blocklist rule hit, if any.
func matchBlocklist(normalized string) (blockReason, bool) {
	for _, r := range blockRules {
		if r.re.MatchString(normalized) {
			return r.reason, true
		}
	}
	return 0, false
}
