// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"empty", "", 10, ""},
		{"shorter than max", "xin chào", 20, "xin chào"},
		{"exact length", "abcde", 5, "abcde"},
		{"truncated with ellipsis", "báo cáo giường bệnh", 10, "báo cáo..."},
		{"max below ellipsis room", "hello", 2, "he"},
		{"zero max", "hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.in, tt.max); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestTruncateRunesNoEllipsis(t *testing.T) {
	if got := TruncateRunesNoEllipsis("mật khẩu", 3); got != "mật" {
		t.Errorf("TruncateRunesNoEllipsis = %q, want %q", got, "mật")
	}
	if got := TruncateRunesNoEllipsis("ok", 10); got != "ok" {
		t.Errorf("TruncateRunesNoEllipsis = %q, want %q", got, "ok")
	}
}

func TestCollapseSpaces(t *testing.T) {
	if got := CollapseSpaces("  mở   báo\tcáo \n giường  "); got != "mở báo cáo giường" {
		t.Errorf("CollapseSpaces = %q", got)
	}
	if got := CollapseSpaces(""); got != "" {
		t.Errorf("CollapseSpaces empty = %q", got)
	}
}

func TestCapitalizeFirst(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"xin chào", "Xin chào"},
		{"đã chuyển", "Đã chuyển"},
		{"Already", "Already"},
		{"123", "123"},
	}
	for _, tt := range tests {
		if got := CapitalizeFirst(tt.in); got != tt.want {
			t.Errorf("CapitalizeFirst(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
