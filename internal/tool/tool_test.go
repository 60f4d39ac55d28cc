// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tool

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/hisassist/internal/classify"
	"github.com/jeranaias/hisassist/internal/llm"
	"github.com/jeranaias/hisassist/internal/portal"
	"github.com/jeranaias/hisassist/internal/routes"
)

// =============================================================================
// NORMALIZATION TESTS
// =============================================================================

func tc(name string, args llm.Args) llm.ToolCall {
	return llm.ToolCall{Function: llm.ToolFunction{Name: name, Arguments: args}}
}

func TestNormalizeCalls_VariantsAndAllowlist(t *testing.T) {
	calls := NormalizeCalls([]llm.ToolCall{
		tc("Navigate_To", llm.Args{"key": "reports/bed-usage"}),
		tc("delete_database", llm.Args{}),
		tc("switch_theme", llm.Args{"mode": "dark"}),
	}, "")

	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2: %+v", len(calls), calls)
	}
	if calls[0].Name != NameNav || calls[1].Name != NameTheme {
		t.Errorf("calls = %+v", calls)
	}
	if calls[0].Args.String("key") != "reports/bed-usage" {
		t.Errorf("nav args = %+v", calls[0].Args)
	}
}

func TestNormalizeCalls_DedupesAndCaps(t *testing.T) {
	calls := NormalizeCalls([]llm.ToolCall{
		tc("nav", llm.Args{"key": "a"}),
		tc("navigate", llm.Args{"key": "b"}),
		tc("theme", nil),
		tc("toggle_theme", nil),
	}, "")

	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2: %+v", len(calls), calls)
	}
	// First occurrence wins for each canonical name.
	if calls[0].Args.String("key") != "a" {
		t.Errorf("dedup kept %+v", calls[0].Args)
	}
}

func TestNormalizeCalls_InlineFallback(t *testing.T) {
	text := `Tôi sẽ mở màn hình. {"name":"nav","arguments":{"key":"home"}}`

	calls := NormalizeCalls(nil, text)
	if len(calls) != 1 || calls[0].Name != NameNav {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[0].Args.String("key") != "home" {
		t.Errorf("args = %+v", calls[0].Args)
	}
}

func TestNormalizeCalls_InlineIgnoredWhenStructuredPresent(t *testing.T) {
	text := `{"name":"theme","arguments":{}}`
	calls := NormalizeCalls([]llm.ToolCall{tc("nav", llm.Args{"key": "home"})}, text)

	if len(calls) != 1 || calls[0].Name != NameNav {
		t.Errorf("calls = %+v", calls)
	}
}

// =============================================================================
// EXECUTOR FIXTURES
// =============================================================================

func execTree() *routes.Route {
	return &routes.Route{
		Path: "app",
		Children: []*routes.Route{
			{Path: "home", Title: "Trang chủ"},
			{Path: "reports", Title: "Báo cáo", Permission: "reports", Children: []*routes.Route{
				{Path: "bed-usage", Title: "Báo cáo giường", Permission: "reports/bed-usage"},
			}},
		},
	}
}

func newTestExecutor(t *testing.T) (*Executor, *portal.MemoryNavigator, *portal.MemoryTheme) {
	t.Helper()
	auth := portal.NewMemoryAuth()
	auth.Login(&portal.User{ID: "u1", Permissions: []string{"reports"}}, "tok")
	catalog := routes.NewCatalog(execTree(), "app", auth, time.Minute)

	nav := portal.NewMemoryNavigator("/app/home")
	theme := portal.NewMemoryTheme()
	cfg := Config{
		NavDebounce:   5 * time.Millisecond,
		NavSettle:     10 * time.Millisecond,
		ThemeCooldown: 50 * time.Millisecond,
	}
	return NewExecutor(nav, theme, catalog, cfg, nil), nav, theme
}

// =============================================================================
// NAVIGATION TESTS
// =============================================================================

func TestExecutor_Navigates(t *testing.T) {
	e, nav, _ := newTestExecutor(t)

	msgs := e.Execute([]Call{{Name: NameNav, Args: llm.Args{"key": "reports/bed-usage"}}}, classify.LangVI)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "Báo cáo giường") {
		t.Fatalf("msgs = %v", msgs)
	}

	// Navigation fires after the debounce.
	time.Sleep(30 * time.Millisecond)
	if nav.CurrentURL() != "/app/reports/bed-usage" {
		t.Errorf("CurrentURL = %q", nav.CurrentURL())
	}
}

func TestExecutor_AlreadyHere(t *testing.T) {
	e, _, _ := newTestExecutor(t)

	msgs := e.Execute([]Call{{Name: NameNav, Args: llm.Args{"key": "home"}}}, classify.LangVI)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "rồi") {
		t.Errorf("msgs = %v", msgs)
	}
}

func TestExecutor_DuplicateNavCollapses(t *testing.T) {
	e, nav, _ := newTestExecutor(t)

	call := Call{Name: NameNav, Args: llm.Args{"key": "reports/bed-usage"}}
	e.Execute([]Call{call}, classify.LangVI)
	e.Execute([]Call{call}, classify.LangVI) // lands while the first is pending

	time.Sleep(40 * time.Millisecond)
	if got := len(nav.History()); got != 1 {
		t.Errorf("navigated %d times, want 1", got)
	}
}

func TestExecutor_NavUnknownKey(t *testing.T) {
	e, nav, _ := newTestExecutor(t)

	msgs := e.Execute([]Call{{Name: NameNav, Args: llm.Args{"key": "x-ray"}}}, classify.LangEN)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "couldn't find") {
		t.Errorf("msgs = %v", msgs)
	}

	time.Sleep(20 * time.Millisecond)
	if len(nav.History()) != 0 {
		t.Error("unknown key must not navigate")
	}
}

// =============================================================================
// THEME TESTS
// =============================================================================

func TestExecutor_ThemeModes(t *testing.T) {
	e, _, theme := newTestExecutor(t)

	msgs := e.Execute([]Call{{Name: NameTheme, Args: llm.Args{"mode": "dark"}}}, classify.LangVI)
	if !theme.IsDark() {
		t.Fatal("mode=dark should enable dark mode")
	}
	if len(msgs) != 1 || !strings.Contains(msgs[0], "tối") {
		t.Errorf("msgs = %v", msgs)
	}

	time.Sleep(60 * time.Millisecond) // past the cooldown
	e.Execute([]Call{{Name: NameTheme, Args: llm.Args{"mode": "sáng"}}}, classify.LangVI)
	if theme.IsDark() {
		t.Error("localized mode=sáng should switch to light")
	}

	time.Sleep(60 * time.Millisecond)
	e.Execute([]Call{{Name: NameTheme, Args: llm.Args{}}}, classify.LangVI)
	if !theme.IsDark() {
		t.Error("missing mode should toggle")
	}
}

// The theme double-fire scenario: a model sending the toggle twice in
// one turn must flip the theme once.
func TestExecutor_ThemeCooldownBlocksDoubleFire(t *testing.T) {
	e, _, theme := newTestExecutor(t)

	call := Call{Name: NameTheme, Args: llm.Args{"mode": "toggle"}}
	msgs := e.Execute([]Call{call}, classify.LangEN)
	msgs2 := e.Execute([]Call{call}, classify.LangEN)

	if !theme.IsDark() {
		t.Error("first toggle should land")
	}
	if len(msgs) != 1 || len(msgs2) != 1 {
		t.Fatalf("msgs = %v / %v", msgs, msgs2)
	}
	// The blocked duplicate still reports the current mode.
	if !strings.Contains(msgs2[0], "dark") {
		t.Errorf("duplicate toggle reply = %q", msgs2[0])
	}
}

// =============================================================================
// SCHEMA TESTS
// =============================================================================

func TestNavSchema(t *testing.T) {
	list := []routes.Info{
		{Key: "home", Title: "Trang chủ"},
		{Key: "reports/bed-usage", Title: "Báo cáo giường"},
	}

	s := NavSchema(list)
	if s.Function.Name != NameNav || s.Type != "function" {
		t.Fatalf("schema = %+v", s)
	}
	enum := s.Function.Parameters.Properties["key"].Enum
	if len(enum) != 2 || enum[1] != "reports/bed-usage" {
		t.Errorf("enum = %v", enum)
	}
	if !strings.Contains(s.Function.Description, "Báo cáo giường") {
		t.Errorf("description = %q", s.Function.Description)
	}
}

func TestThemeSchema(t *testing.T) {
	s := ThemeSchema()
	if s.Function.Name != NameTheme {
		t.Fatalf("schema = %+v", s)
	}
	enum := s.Function.Parameters.Properties["mode"].Enum
	if len(enum) != 3 {
		t.Errorf("enum = %v", enum)
	}
}
