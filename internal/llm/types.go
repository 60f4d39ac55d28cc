// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import "encoding/json"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message is one turn of the conversation as sent over the wire.
type Message struct {
	Role      string     `json:"role"` // "user", "assistant", "system", "tool"
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Args holds tool-call arguments. Some model builds emit arguments as a
// JSON object, others as a JSON-encoded string; both decode into the
// same map.
type Args map[string]any

// UnmarshalJSON accepts either an object or a string containing an
// object. Anything else decodes to an empty map rather than failing the
// whole frame.
func (a *Args) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err == nil {
		*a = obj
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &obj); err == nil {
			*a = obj
			return nil
		}
	}

	*a = Args{}
	return nil
}

// String returns the named argument as a string, or empty.
func (a Args) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	Function ToolFunction `json:"function"`
}

// ToolFunction carries the function name and arguments.
type ToolFunction struct {
	Name      string `json:"name"`
	Arguments Args   `json:"arguments"`
}

// FunctionCall is the legacy single-call form some model builds emit
// instead of tool_calls.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments Args   `json:"arguments"`
}

// ChatRequest is the request body for /api/chat.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *Options  `json:"options,omitempty"`
	Tools    []Tool    `json:"tools,omitempty"`
}

// Tool is a tool definition for function calling.
type Tool struct {
	Type     string     `json:"type"` // always "function"
	Function ToolSchema `json:"function"`
}

// ToolSchema defines a tool's interface.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

// ToolParameters is the JSON Schema object describing tool parameters.
type ToolParameters struct {
	Type       string                  `json:"type"` // "object"
	Properties map[string]ToolProperty `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

// ToolProperty is one parameter's schema.
type ToolProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

// Options are the inference parameters forwarded to the model.
type Options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	TopK          int     `json:"top_k,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
}

// =============================================================================
// WIRE FRAMES
// =============================================================================

// frame is one decoded NDJSON line of a streaming response.
type frame struct {
	Message struct {
		Role         string        `json:"role"`
		Content      string        `json:"content"`
		ToolCalls    []ToolCall    `json:"tool_calls,omitempty"`
		FunctionCall *FunctionCall `json:"function_call,omitempty"`
	} `json:"message"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason,omitempty"`
}

// Chunk is one delivered stream update.
type Chunk struct {
	// Content is this chunk's text fragment, possibly empty.
	Content string

	// ToolCalls are new, de-duplicated tool calls discovered in this
	// chunk.
	ToolCalls []ToolCall

	// Done marks the final chunk of the stream.
	Done bool

	// Err carries a streaming error; Done is true alongside it.
	Err error
}

// gatewayError is the JSON error body the gateway returns on non-200.
type gatewayError struct {
	Error string `json:"error"`
}

// =============================================================================
// HELPERS
// =============================================================================

// NewUserMessage creates a user turn.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates an assistant turn.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// NewSystemMessage creates a system turn.
func NewSystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}
