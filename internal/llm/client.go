// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the gateway client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeOffline
	ErrTypeTimeout
	ErrTypeUnauthorized
	ErrTypeInvalidResponse
	ErrTypeCancelled
)

// Sentinel errors for easy checking.
var (
	ErrOffline      = &ClientError{Type: ErrTypeOffline, Message: "assistant gateway is unreachable"}
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnauthorized = &ClientError{Type: ErrTypeUnauthorized, Message: "gateway rejected the access token"}
	ErrCancelled    = &ClientError{Type: ErrTypeCancelled, Message: "request cancelled"}
)

// IsOffline checks if an error means the gateway is unreachable.
func IsOffline(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeOffline
	}
	return false
}

// IsCancelled checks if an error came from a cancelled context.
func IsCancelled(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeCancelled
	}
	return errors.Is(err, context.Canceled)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds configuration options for the gateway client.
type Config struct {
	// BaseURL of the assistant gateway.
	BaseURL string

	// Model requested on every chat call.
	Model string

	// Timeout for non-streaming requests (default: 10s).
	Timeout time.Duration

	// TokenSource supplies the bearer token per request; nil or an
	// empty result sends no Authorization header.
	TokenSource func() string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:11434",
		Model:   "qwen2.5:7b",
		Timeout: 10 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the assistant gateway. Safe for
// concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a gateway client. Zero config fields fall back to
// defaults.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// authorize attaches the bearer token, when one is available.
func (c *Client) authorize(req *http.Request) {
	if c.config.TokenSource == nil {
		return
	}
	if tok := c.config.TokenSource(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// HealthStatus is the optional JSON body of the health endpoint.
// Deployments may advertise a hotline override for maintenance windows.
type HealthStatus struct {
	Status  string `json:"status"`
	Hotline string `json:"hotline"`
}

// Health verifies that the gateway is reachable and returns whatever
// status body it advertised. A plain-text or empty body yields an empty
// HealthStatus, not an error.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		if errors.Is(err, context.Canceled) {
			return nil, ErrCancelled
		}
		return nil, ErrOffline
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeOffline,
			Message: "unexpected status from gateway: " + resp.Status,
		}
	}

	var hs HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&hs); err != nil {
		return &HealthStatus{}, nil
	}
	return &hs, nil
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// StreamCallback is called for each chunk received during streaming.
type StreamCallback func(chunk Chunk)

// ChatStream sends a streaming chat request and feeds every decoded
// chunk to the callback in arrival order. The final chunk carries
// Done=true and the collected tool calls; cancellation surfaces as
// ErrCancelled.
func (c *Client) ChatStream(ctx context.Context, messages []Message, tools []Tool, opts *Options, callback StreamCallback) error {
	reqBody := ChatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   true,
		Options:  opts,
		Tools:    tools,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	// No client timeout on the streaming connection; the context bounds
	// its lifetime.
	streamClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return ErrCancelled
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrOffline
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		var gw gatewayError
		if err := json.NewDecoder(resp.Body).Decode(&gw); err == nil && gw.Error != "" {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: gw.Error}
		}
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "stream request failed: " + resp.Status,
		}
	}

	reader := NewStreamReader(resp.Body)
	return reader.Process(ctx, callback)
}
