// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import "strings"

// =============================================================================
// INTENTS
// =============================================================================

// Intent is the coarse category assigned to a message before any network
// call. Only nav and theme intents carry a tool schema to the model.
type Intent string

const (
	IntentNone        Intent = ""
	IntentNav         Intent = "nav"
	IntentTheme       Intent = "theme"
	IntentITSupport   Intent = "it_support"
	IntentFeatureHelp Intent = "feature_help"
)

// =============================================================================
// WHITELIST
// =============================================================================

// whitelistEntry fast-paths recognized input. Entries carry either canned
// response variants (a direct answer, one picked pseudo-randomly) or an
// intent tag that is validated by the security gate before acceptance.
//
// Patterns are in normalized form. Patterns of three characters or fewer
// only match whole words; longer patterns match by substring containment.
type whitelistEntry struct {
	patterns  []string
	responses map[Language][]string
	intent    Intent
}

var whitelistEntries = []whitelistEntry{
	{
		patterns: []string{"xin chao", "chao ban", "hello", "hi", "alo"},
		responses: map[Language][]string{
			LangVI: {
				"Xin chào! Tôi là trợ lý của hệ thống. Tôi có thể mở màn hình, đổi giao diện hoặc hướng dẫn sử dụng phần mềm.",
				"Chào bạn! Bạn cần mở báo cáo, đổi giao diện hay cần hướng dẫn gì không?",
			},
			LangEN: {
				"Hello! I am the portal assistant. I can open screens, switch the theme, or walk you through a feature.",
			},
		},
	},
	{
		patterns: []string{"cam on", "thank"},
		responses: map[Language][]string{
			LangVI: {
				"Không có gì! Bạn cần hỗ trợ gì thêm cứ nhắn nhé.",
				"Rất vui được giúp bạn!",
			},
			LangEN: {
				"You're welcome! Let me know if you need anything else.",
			},
		},
	},
	{
		patterns: []string{
			"mo ", "vao ", "chuyen den", "chuyen toi", "chuyen sang man hinh",
			"open ", "go to", "man hinh", "bao cao", "xem bao cao", "trang ",
		},
		intent: IntentNav,
	},
	{
		patterns: []string{
			"giao dien toi", "giao dien sang", "che do toi", "che do sang",
			"doi giao dien", "dark mode", "light mode", "doi theme", "nen toi", "nen sang",
		},
		intent: IntentTheme,
	},
	{
		patterns: []string{
			"loi ", "bi loi", "khong vao duoc", "khong mo duoc", "bi hong",
			"may in", "mang cham", "khong ket noi", "error", "not working", "bug",
		},
		intent: IntentITSupport,
	},
	{
		patterns: []string{
			"huong dan", "cach ", "lam sao", "lam the nao", "su dung the nao",
			"how do i", "how to", "o dau",
		},
		intent: IntentFeatureHelp,
	},
}

// shortPatternMax is the pattern length at or below which matching
// requires a whole-word hit instead of substring containment.
const shortPatternMax = 3

// matchesPattern reports whether a normalized input matches one pattern
// under the short-pattern whole-word rule. Trailing spaces inside a
// pattern ("mo ") request a word-prefix position and are honored by the
// substring path.
func matchesPattern(normalized string, words []string, pattern string) bool {
	trimmed := strings.TrimSpace(pattern)
	if len(trimmed) <= shortPatternMax && !strings.Contains(trimmed, " ") {
		for _, w := range words {
			if w == trimmed {
				return true
			}
		}
		// "mo " style patterns also accept the word in leading position
		// followed by more text, which the word loop above covers.
		return false
	}
	return strings.Contains(normalized, pattern) ||
		strings.HasPrefix(normalized, strings.TrimSpace(pattern))
}

// matchWhitelist returns the first whitelist entry matching the input.
func matchWhitelist(normalized string, words []string) (*whitelistEntry, bool) {
	for i := range whitelistEntries {
		e := &whitelistEntries[i]
		for _, p := range e.patterns {
			if matchesPattern(normalized, words, p) {
				return e, true
			}
		}
	}
	return nil, false
}

// intentVocabulary returns the folded keyword vocabulary registered for an
// intent, used by the security gate's density check.
func intentVocabulary(intent Intent) []string {
	var vocab []string
	for i := range whitelistEntries {
		e := &whitelistEntries[i]
		if e.intent != intent {
			continue
		}
		for _, p := range e.patterns {
			for _, w := range strings.Fields(p) {
				vocab = append(vocab, w)
			}
		}
	}
	return vocab
}
