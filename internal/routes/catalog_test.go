// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package routes

import (
	"testing"
	"time"

	"github.com/jeranaias/hisassist/internal/portal"
)

// hospitalTree mirrors a typical portal route layout: an app root with
// public screens, permissioned report screens, a redirect, and a
// wildcard catch-all.
func hospitalTree() *Route {
	return &Route{
		Path:  "app",
		Title: "Trang chủ",
		Children: []*Route{
			{Path: "", Redirect: true},
			{Path: "home", Title: "Trang chủ"},
			{Path: "settings", Title: "Cài đặt", Children: []*Route{
				{Path: "account", Title: "Tài khoản", Keywords: []string{"mật khẩu", "đổi mật khẩu"}},
			}},
			{Path: "profile", Title: "Hồ sơ cá nhân"},
			{Path: "reports", Title: "Báo cáo", Permission: "reports", Children: []*Route{
				{Path: "bed-usage", Title: "Báo cáo giường", Permission: "reports/bed-usage",
					Keywords: []string{"giường bệnh", "công suất giường"}},
				{Path: "revenue", Title: "Báo cáo doanh thu", Permission: "reports/revenue"},
			}},
			{Path: "pharmacy", Title: "Kho dược", Permission: "pharmacy", Children: []*Route{
				{Path: "inventory", Title: "Tồn kho dược", Permission: "pharmacy/inventory"},
			}},
			{Path: "admin", Title: "Quản trị", Permission: "admin"},
			{Path: "**"},
		},
	}
}

func newTestCatalog(perms ...string) (*Catalog, *portal.MemoryAuth) {
	auth := portal.NewMemoryAuth()
	auth.Login(&portal.User{ID: "u1", FullName: "Trần Thị Bình", Permissions: perms}, "tok")
	return NewCatalog(hospitalTree(), "app", auth, time.Minute), auth
}

func keys(list []Info) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.Key
	}
	return out
}

func contains(list []Info, key string) bool {
	for _, r := range list {
		if r.Key == key {
			return true
		}
	}
	return false
}

func TestCatalog_PermissionFiltering(t *testing.T) {
	cat, _ := newTestCatalog("reports")
	list := cat.Routes()

	// Public whitelist screens are always present.
	for _, want := range []string{"home", "settings", "settings/account", "profile"} {
		if !contains(list, want) {
			t.Errorf("missing public screen %q in %v", want, keys(list))
		}
	}

	// "reports" grant covers the whole subtree by prefix.
	if !contains(list, "reports/bed-usage") || !contains(list, "reports/revenue") {
		t.Errorf("reports subtree missing: %v", keys(list))
	}

	// Ungranted and wildcard/redirect nodes are excluded.
	for _, bad := range []string{"pharmacy/inventory", "admin", "**", ""} {
		if contains(list, bad) {
			t.Errorf("unexpected screen %q", bad)
		}
	}
}

func TestCatalog_AnonymousGetsNothing(t *testing.T) {
	auth := portal.NewMemoryAuth()
	cat := NewCatalog(hospitalTree(), "app", auth, time.Minute)

	if got := cat.Routes(); got != nil {
		t.Errorf("anonymous Routes = %v, want nil", keys(got))
	}
	if cat.Resolve("home") != nil {
		t.Error("anonymous Resolve should return nil")
	}
}

func TestCatalog_Resolve(t *testing.T) {
	cat, _ := newTestCatalog("reports")

	// Exact key.
	if r := cat.Resolve("reports/bed-usage"); r == nil || r.Title != "Báo cáo giường" {
		t.Fatalf("exact resolve = %+v", r)
	}

	// Key with app-root segment still attached.
	if r := cat.Resolve("app/reports/bed-usage"); r == nil || r.Key != "reports/bed-usage" {
		t.Errorf("app-root-stripped resolve = %+v", r)
	}

	// Fuzzy by folded title.
	if r := cat.Resolve("bao cao giuong"); r == nil || r.Key != "reports/bed-usage" {
		t.Errorf("fuzzy title resolve = %+v", r)
	}

	// Fuzzy by keyword synonym.
	if r := cat.Resolve("cong suat giuong"); r == nil || r.Key != "reports/bed-usage" {
		t.Errorf("fuzzy keyword resolve = %+v", r)
	}

	if cat.Resolve("x-ray") != nil {
		t.Error("unknown key should not resolve")
	}
}

func TestCatalog_FullURL(t *testing.T) {
	cat, _ := newTestCatalog("reports")

	r := cat.Resolve("reports/bed-usage")
	if r == nil || r.FullURL != "/app/reports/bed-usage" {
		t.Errorf("FullURL = %+v", r)
	}
}

func TestCatalog_FuzzyAll(t *testing.T) {
	cat, _ := newTestCatalog("reports")

	// "bao cao" matches both report screens, driving disambiguation.
	hits := cat.FuzzyAll([]string{"bao", "cao"})
	if len(hits) < 2 {
		t.Fatalf("FuzzyAll hits = %v, want both report screens", keys(hits))
	}

	// A word set pinning down one screen beats partial overlap.
	hits = cat.FuzzyAll([]string{"bao", "cao", "giuong"})
	if len(hits) != 1 || hits[0].Key != "reports/bed-usage" {
		t.Errorf("FuzzyAll = %v, want only bed-usage", keys(hits))
	}

	// Short words are ignored entirely.
	if got := cat.FuzzyAll([]string{"mo", "di"}); len(got) != 0 {
		t.Errorf("short words should not match, got %v", keys(got))
	}
}

func TestCatalog_InvalidateAfterPermissionChange(t *testing.T) {
	cat, auth := newTestCatalog("reports")

	if !contains(cat.Routes(), "reports/bed-usage") {
		t.Fatal("expected reports screen before change")
	}

	// Same user loses the grant; memoized list still serves until the
	// catalog is invalidated.
	auth.Login(&portal.User{ID: "u1", FullName: "Trần Thị Bình"}, "tok")
	if !contains(cat.Routes(), "reports/bed-usage") {
		t.Fatal("cache should still hold the old list")
	}

	cat.Invalidate()
	if contains(cat.Routes(), "reports/bed-usage") {
		t.Error("invalidate should force a rebuild without the grant")
	}
}
