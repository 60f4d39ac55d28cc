// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/hisassist/internal/util"
)

// =============================================================================
// TRANSCRIPT MESSAGES
// =============================================================================

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one transcript entry. The UI receives copies; only the
// orchestrator mutates the canonical slice.
type Message struct {
	ID          string
	Role        string
	Content     string
	Timestamp   time.Time
	IsStreaming bool
	IsError     bool
}

// newMessage creates a transcript entry with a fresh ID.
func newMessage(role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// =============================================================================
// INPUT SANITIZATION
// =============================================================================

const maxInputRunes = 1000

var (
	controlRe = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

	// Template and special-token markers that have no business in chat
	// input and only appear in injection attempts.
	injectionMarkerRe = regexp.MustCompile(`\{\{.*?\}\}|<\|.*?\|>|\[INST\]|\[/INST\]`)
)

// sanitizeInput strips control characters and injection markers,
// collapses whitespace, and caps the length. Returns empty when nothing
// usable remains.
func sanitizeInput(s string) string {
	s = controlRe.ReplaceAllString(s, "")
	s = injectionMarkerRe.ReplaceAllString(s, " ")
	s = util.CollapseSpaces(s)
	return util.TruncateRunesNoEllipsis(s, maxInputRunes)
}

// =============================================================================
// OUTPUT FINALIZATION
// =============================================================================

// terminalRunes end a sentence without needing an added period.
const terminalRunes = ".!?…:)”\"'"

// finalizeContent trims, capitalizes the first letter, and ensures
// terminal punctuation.
func finalizeContent(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	s = util.CapitalizeFirst(s)

	runes := []rune(s)
	last := runes[len(runes)-1]
	if !strings.ContainsRune(terminalRunes, last) {
		s += "."
	}
	return s
}
