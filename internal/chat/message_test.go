// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "mở báo cáo", "mở báo cáo"},
		{"control chars stripped", "xin\x00 ch\x07ào", "xin chào"},
		{"template marker", "xin chào {{system.prompt}} bạn", "xin chào bạn"},
		{"special tokens", "<|im_start|>hello", "hello"},
		{"inst marker", "[INST] làm gì đó [/INST]", "làm gì đó"},
		{"whitespace collapsed", "  mở    báo cáo  ", "mở báo cáo"},
		{"nothing left", "\x01\x02  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeInput(tt.input); got != tt.want {
				t.Errorf("sanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeInput_CapsLength(t *testing.T) {
	long := strings.Repeat("a", 2*maxInputRunes)
	got := sanitizeInput(long)
	if len([]rune(got)) != maxInputRunes {
		t.Errorf("len = %d, want %d", len([]rune(got)), maxInputRunes)
	}
}

func TestFinalizeContent(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"đang mở báo cáo", "Đang mở báo cáo."},
		{"Đã xong.", "Đã xong."},
		{"bạn cần gì nữa không?", "Bạn cần gì nữa không?"},
		{"  có khoảng trắng  ", "Có khoảng trắng."},
		{"", ""},
	}
	for _, tt := range tests {
		if got := finalizeContent(tt.input); got != tt.want {
			t.Errorf("finalizeContent(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewMessage_UniqueIDs(t *testing.T) {
	a := newMessage(RoleUser, "a")
	b := newMessage(RoleUser, "b")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs not unique: %q vs %q", a.ID, b.ID)
	}
	if a.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}
