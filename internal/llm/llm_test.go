// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// ARGUMENT DECODING TESTS
// =============================================================================

func TestArgs_UnmarshalVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // value of "key"
	}{
		{"object", `{"key":"reports/bed-usage"}`, "reports/bed-usage"},
		{"json string", `"{\"key\":\"reports/bed-usage\"}"`, "reports/bed-usage"},
		{"garbage", `42`, ""},
		{"plain string", `"not json"`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Args
			if err := json.Unmarshal([]byte(tt.in), &a); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got := a.String("key"); got != tt.want {
				t.Errorf("String(key) = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// STREAM READER TESTS
// =============================================================================

// collect runs a reader over raw NDJSON and gathers every chunk.
func collect(t *testing.T, raw string) (string, []ToolCall, error) {
	t.Helper()
	r := NewStreamReader(strings.NewReader(raw))

	var calls []ToolCall
	err := r.Process(context.Background(), func(c Chunk) {
		calls = append(calls, c.ToolCalls...)
	})
	return r.Accumulated(), calls, err
}

func TestStreamReader_AccumulatesContent(t *testing.T) {
	raw := `{"message":{"role":"assistant","content":"Xin "},"done":false}` + "\n" +
		`{"message":{"role":"assistant","content":"chào!"},"done":false}` + "\n" +
		`{"message":{"role":"assistant","content":""},"done":true}` + "\n"

	text, calls, err := collect(t, raw)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if text != "Xin chào!" {
		t.Errorf("Accumulated = %q", text)
	}
	if len(calls) != 0 {
		t.Errorf("unexpected tool calls: %+v", calls)
	}
}

func TestStreamReader_SkipsMalformedLines(t *testing.T) {
	raw := `{"message":{"content":"a"},"done":false}` + "\n" +
		`NOT JSON AT ALL` + "\n" +
		"\n" +
		`{"message":{"content":"b"},"done":true}` + "\n"

	text, _, err := collect(t, raw)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if text != "ab" {
		t.Errorf("Accumulated = %q, want malformed lines skipped", text)
	}
}

func TestStreamReader_DedupesToolCallsByName(t *testing.T) {
	raw := `{"message":{"content":"","tool_calls":[{"function":{"name":"nav","arguments":{"key":"reports/bed-usage"}}}]},"done":false}` + "\n" +
		`{"message":{"content":"","tool_calls":[{"function":{"name":"nav","arguments":{"key":"reports/bed-usage"}}}]},"done":false}` + "\n" +
		`{"message":{"content":"","tool_calls":[{"function":{"name":"theme","arguments":{"mode":"dark"}}}]},"done":true}` + "\n"

	_, calls, err := collect(t, raw)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("got %d tool calls, want 2 (deduped): %+v", len(calls), calls)
	}
	if calls[0].Function.Name != "nav" || calls[1].Function.Name != "theme" {
		t.Errorf("calls = %+v", calls)
	}
	if calls[0].Function.Arguments.String("key") != "reports/bed-usage" {
		t.Errorf("nav arguments = %+v", calls[0].Function.Arguments)
	}
}

func TestStreamReader_LegacyFunctionCall(t *testing.T) {
	raw := `{"message":{"content":"","function_call":{"name":"theme","arguments":"{\"mode\":\"toggle\"}"}},"done":true}` + "\n"

	_, calls, err := collect(t, raw)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(calls) != 1 || calls[0].Function.Name != "theme" {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[0].Function.Arguments.String("mode") != "toggle" {
		t.Errorf("arguments = %+v", calls[0].Function.Arguments)
	}
}

func TestStreamReader_EOFWithoutDoneStillCompletes(t *testing.T) {
	raw := `{"message":{"content":"partial"},"done":false}` + "\n"

	r := NewStreamReader(strings.NewReader(raw))
	var sawDone bool
	err := r.Process(context.Background(), func(c Chunk) {
		if c.Done {
			sawDone = true
		}
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !sawDone {
		t.Error("truncated stream should still deliver a final chunk")
	}
	if r.Accumulated() != "partial" {
		t.Errorf("Accumulated = %q", r.Accumulated())
	}
}

func TestStreamReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewStreamReader(strings.NewReader(`{"message":{"content":"x"},"done":true}` + "\n"))
	err := r.Process(ctx, func(Chunk) {})
	if !IsCancelled(err) {
		t.Errorf("err = %v, want cancelled", err)
	}
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func TestClient_ChatStreamSendsAuthAndTools(t *testing.T) {
	var gotAuth string
	var gotReq ChatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"message":{"content":"ok"},"done":true}` + "\n"))
	}))
	defer srv.Close()

	c := NewClient(Config{
		BaseURL:     srv.URL,
		Model:       "qwen2.5:7b",
		TokenSource: func() string { return "tok-123" },
	})

	tools := []Tool{{Type: "function", Function: ToolSchema{Name: "nav"}}}
	var text strings.Builder
	err := c.ChatStream(context.Background(), []Message{NewUserMessage("hi")}, tools, nil, func(ch Chunk) {
		text.WriteString(ch.Content)
	})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !gotReq.Stream || gotReq.Model != "qwen2.5:7b" || len(gotReq.Tools) != 1 {
		t.Errorf("request = %+v", gotReq)
	}
	if text.String() != "ok" {
		t.Errorf("content = %q", text.String())
	}
}

func TestClient_ChatStreamUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	err := c.ChatStream(context.Background(), nil, nil, nil, func(Chunk) {})

	var ce *ClientError
	if !errors.As(err, &ce) || ce.Type != ErrTypeUnauthorized {
		t.Errorf("err = %v, want unauthorized", err)
	}
}

func TestClient_HealthOffline(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	_, err := c.Health(context.Background())
	if !IsOffline(err) {
		t.Errorf("err = %v, want offline", err)
	}
}

func TestClient_HealthHotline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","hotline":"1900 4321"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	hs, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if hs.Hotline != "1900 4321" {
		t.Errorf("Hotline = %q", hs.Hotline)
	}
}

// =============================================================================
// SANITIZER TESTS
// =============================================================================

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Đã mở Báo cáo giường.", "Đã mở Báo cáo giường."},
		{"think tag", "<think>reasoning here</think>Xong rồi.", "Xong rồi."},
		{"open think tag", "Xong rồi.<thinking>never closed", "Xong rồi."},
		{"tool json leak", `Đang mở {"name":"nav","arguments":{"key":"home"}} màn hình.`, "Đang mở  màn hình."},
		{"url stripped", "Xem tại https://example.com/x nhé.", "Xem tại  nhé."},
		{"blank run", "a\n\n\n\n\nb", "a\n\nb"},
		{"whitespace only", "   \n\n  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in, 0); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitize_Truncates(t *testing.T) {
	long := strings.Repeat("a", 50)
	got := Sanitize(long, 10)
	if len([]rune(got)) != 10 || !strings.HasSuffix(got, "...") {
		t.Errorf("Sanitize truncation = %q", got)
	}
}

// =============================================================================
// DEBOUNCER TESTS
// =============================================================================

func TestDebouncer_CoalescesBursts(t *testing.T) {
	var mu sync.Mutex
	var emitted []string

	d := NewDebouncer(40*time.Millisecond, func(s string) {
		mu.Lock()
		emitted = append(emitted, s)
		mu.Unlock()
	})

	for i := 0; i < 20; i++ {
		d.Publish(strings.Repeat("x", i+1))
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(emitted) == 0 || len(emitted) >= 20 {
		t.Fatalf("emitted %d updates, want coalesced burst", len(emitted))
	}
	// The last delivery must carry the newest snapshot.
	if last := emitted[len(emitted)-1]; last != strings.Repeat("x", 20) {
		t.Errorf("last snapshot = %q", last)
	}
}

func TestDebouncer_FlushDeliversPending(t *testing.T) {
	var mu sync.Mutex
	var emitted []string

	d := NewDebouncer(time.Hour, func(s string) {
		mu.Lock()
		emitted = append(emitted, s)
		mu.Unlock()
	})

	d.Publish("first") // consumes the single burst token
	d.Publish("second")
	d.Flush()

	mu.Lock()
	defer mu.Unlock()
	if len(emitted) != 2 || emitted[1] != "second" {
		t.Errorf("emitted = %v", emitted)
	}
}

func TestDebouncer_CloseDropsLaterPublishes(t *testing.T) {
	var mu sync.Mutex
	count := 0

	d := NewDebouncer(time.Hour, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	d.Publish("a")
	d.Close()
	d.Publish("b")
	d.Flush()

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("emit count = %d, want 1", count)
	}
}
