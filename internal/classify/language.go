// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import "strings"

// =============================================================================
// LANGUAGE DETECTION
// =============================================================================

// Language identifies the language a user message was written in. Every
// engine-produced message (refusal, fallback, tool confirmation) is
// rendered in the detected language.
type Language string

const (
	// LangVI is Vietnamese, the portal's local language and the default.
	LangVI Language = "vi"
	// LangEN is English, detected from common sentence starters.
	LangEN Language = "en"
)

// vietnameseMarks contains letters that only occur in Vietnamese
// orthography. One occurrence is enough to decide the language.
const vietnameseMarks = "ăâđêôơưáàảãạắằẳẵặấầẩẫậéèẻẽẹếềểễệíìỉĩịóòỏõọốồổỗộớờởỡợúùủũụứừửữựýỳỷỹỵ"

// vietnameseWords are common function words that survive diacritic loss,
// for users typing without accents.
var vietnameseWords = map[string]bool{
	"khong": true, "duoc": true, "cua": true, "cho": true, "toi": true,
	"em": true, "anh": true, "chi": true, "nhe": true, "nha": true,
	"la": true, "va": true, "bi": true, "giup": true, "oi": true,
}

// englishStarters mark a sentence as English when they lead it.
var englishStarters = []string{
	"what", "how", "why", "where", "when", "who", "please", "can you",
	"could you", "i want", "i need", "open", "show", "help me", "is ",
	"do ", "does ",
}

// DetectLanguage guesses the language of a raw user message. Vietnamese
// diacritics or function words win over everything; English sentence
// starters come second; Vietnamese is the default.
func DetectLanguage(raw string) Language {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return LangVI
	}

	if strings.ContainsAny(lower, vietnameseMarks) {
		return LangVI
	}
	for _, w := range strings.Fields(lower) {
		if vietnameseWords[w] {
			return LangVI
		}
	}
	for _, s := range englishStarters {
		if strings.HasPrefix(lower, s) {
			return LangEN
		}
	}
	return LangVI
}
