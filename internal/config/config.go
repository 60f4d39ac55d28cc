// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete assistant engine configuration.
type Config struct {
	// Hotline is the IT support phone number named in every escalation
	// message.
	Hotline string `toml:"hotline"`

	Gateway GatewayConfig `toml:"gateway"`
	Options OptionsConfig `toml:"options"`
	Limits  LimitsConfig  `toml:"limits"`
	Gate    GateConfig    `toml:"gate"`
	Session SessionConfig `toml:"session"`
	Stream  StreamConfig  `toml:"stream"`
	Typing  TypingConfig  `toml:"typing"`
}

// GatewayConfig addresses the model gateway.
type GatewayConfig struct {
	// BaseURL of the Ollama-compatible gateway.
	BaseURL string `toml:"base_url"`

	// Model requested on every chat call.
	Model string `toml:"model"`

	// TimeoutSecs bounds non-streaming requests.
	TimeoutSecs int `toml:"timeout_secs"`

	// HealthIntervalSecs is the offline-detection poll period.
	HealthIntervalSecs int `toml:"health_interval_secs"`
}

// OptionsConfig carries the inference parameters.
type OptionsConfig struct {
	Temperature   float64 `toml:"temperature"`
	TopP          float64 `toml:"top_p"`
	TopK          int     `toml:"top_k"`
	RepeatPenalty float64 `toml:"repeat_penalty"`
	NumPredict    int     `toml:"num_predict"`
	NumCtx        int     `toml:"num_ctx"`
}

// LimitsConfig tunes the send rate limiter.
type LimitsConfig struct {
	WindowSecs   int `toml:"window_secs"`
	Ceiling      int `toml:"ceiling"`
	CooldownSecs int `toml:"cooldown_secs"`
}

// GateConfig tunes the classifier's security gate.
type GateConfig struct {
	MaxCommandRunes   int     `toml:"max_command_runes"`
	MinWords          int     `toml:"min_words"`
	MinKeywordDensity float64 `toml:"min_keyword_density"`
	MinInputRunes     int     `toml:"min_input_runes"`
}

// SessionConfig tunes the idle reset.
type SessionConfig struct {
	IdleTimeoutSecs int `toml:"idle_timeout_secs"`
}

// StreamConfig tunes stream processing and retries.
type StreamConfig struct {
	FlushIntervalMs  int `toml:"flush_interval_ms"`
	MaxOutputRunes   int `toml:"max_output_runes"`
	HistoryTurns     int `toml:"history_turns"`
	HistoryTurnRunes int `toml:"history_turn_runes"`
	MaxRetries       int `toml:"max_retries"`
	RetryDelayMs     int `toml:"retry_delay_ms"`
}

// TypingConfig tunes the simulated typing delay before direct replies.
type TypingConfig struct {
	MinDelayMs int `toml:"min_delay_ms"`
	MaxDelayMs int `toml:"max_delay_ms"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Hotline: "1900 8668",
		Gateway: GatewayConfig{
			BaseURL:            "http://127.0.0.1:11434",
			Model:              "qwen2.5:7b",
			TimeoutSecs:        10,
			HealthIntervalSecs: 30,
		},
		Options: OptionsConfig{
			Temperature:   0.3,
			TopP:          0.9,
			TopK:          40,
			RepeatPenalty: 1.1,
			NumPredict:    512,
			NumCtx:        4096,
		},
		Limits: LimitsConfig{
			WindowSecs:   60,
			Ceiling:      10,
			CooldownSecs: 30,
		},
		Gate: GateConfig{
			MaxCommandRunes:   200,
			MinWords:          5,
			MinKeywordDensity: 0.2,
			MinInputRunes:     8,
		},
		Session: SessionConfig{
			IdleTimeoutSecs: 300,
		},
		Stream: StreamConfig{
			FlushIntervalMs:  25,
			MaxOutputRunes:   1500,
			HistoryTurns:     8,
			HistoryTurnRunes: 600,
			MaxRetries:       2,
			RetryDelayMs:     800,
		},
		Typing: TypingConfig{
			MinDelayMs: 400,
			MaxDelayMs: 1200,
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads a TOML config from path, layering it over the defaults.
// A missing file is not an error: defaults plus environment overrides
// apply. Out-of-range values are clamped by Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides lets the deployment override key settings without
// touching the config file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("HISASSIST_GATEWAY_URL"); v != "" {
		c.Gateway.BaseURL = v
	}
	if v := os.Getenv("HISASSIST_MODEL"); v != "" {
		c.Gateway.Model = v
	}
	if v := os.Getenv("HISASSIST_HOTLINE"); v != "" {
		c.Hotline = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// clampInt pulls v into [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampFloat pulls v into [lo, hi].
func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Validate checks the gateway URL and clamps every tunable into safe
// bounds. Only a malformed URL is fatal.
func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = Default().Gateway.BaseURL
	}
	if u, err := url.Parse(c.Gateway.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid gateway.base_url %q", c.Gateway.BaseURL)
	}
	if c.Gateway.Model == "" {
		c.Gateway.Model = Default().Gateway.Model
	}

	c.Gateway.TimeoutSecs = clampInt(c.Gateway.TimeoutSecs, 1, 120)
	c.Gateway.HealthIntervalSecs = clampInt(c.Gateway.HealthIntervalSecs, 5, 600)

	c.Options.Temperature = clampFloat(c.Options.Temperature, 0, 2)
	c.Options.TopP = clampFloat(c.Options.TopP, 0, 1)
	c.Options.TopK = clampInt(c.Options.TopK, 1, 200)
	c.Options.RepeatPenalty = clampFloat(c.Options.RepeatPenalty, 0.5, 2)
	c.Options.NumPredict = clampInt(c.Options.NumPredict, 64, 4096)
	c.Options.NumCtx = clampInt(c.Options.NumCtx, 512, 32768)

	c.Limits.WindowSecs = clampInt(c.Limits.WindowSecs, 10, 600)
	c.Limits.Ceiling = clampInt(c.Limits.Ceiling, 1, 100)
	c.Limits.CooldownSecs = clampInt(c.Limits.CooldownSecs, 5, 600)

	c.Gate.MaxCommandRunes = clampInt(c.Gate.MaxCommandRunes, 50, 1000)
	c.Gate.MinWords = clampInt(c.Gate.MinWords, 2, 20)
	c.Gate.MinKeywordDensity = clampFloat(c.Gate.MinKeywordDensity, 0.05, 0.9)
	c.Gate.MinInputRunes = clampInt(c.Gate.MinInputRunes, 2, 50)

	c.Session.IdleTimeoutSecs = clampInt(c.Session.IdleTimeoutSecs, 30, 3600)

	c.Stream.FlushIntervalMs = clampInt(c.Stream.FlushIntervalMs, 10, 500)
	c.Stream.MaxOutputRunes = clampInt(c.Stream.MaxOutputRunes, 200, 10000)
	c.Stream.HistoryTurns = clampInt(c.Stream.HistoryTurns, 2, 50)
	c.Stream.HistoryTurnRunes = clampInt(c.Stream.HistoryTurnRunes, 100, 4000)
	c.Stream.MaxRetries = clampInt(c.Stream.MaxRetries, 0, 5)
	c.Stream.RetryDelayMs = clampInt(c.Stream.RetryDelayMs, 100, 10000)

	// The typing delay exists to feel human; anything outside this band
	// reads as broken or sluggish.
	c.Typing.MinDelayMs = clampInt(c.Typing.MinDelayMs, 400, 1600)
	c.Typing.MaxDelayMs = clampInt(c.Typing.MaxDelayMs, c.Typing.MinDelayMs, 1600)

	return nil
}

// =============================================================================
// DURATION ACCESSORS
// =============================================================================

func (c *GatewayConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func (c *GatewayConfig) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSecs) * time.Second
}

func (c *LimitsConfig) Window() time.Duration {
	return time.Duration(c.WindowSecs) * time.Second
}

func (c *LimitsConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSecs) * time.Second
}

func (c *SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSecs) * time.Second
}

func (c *StreamConfig) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMs) * time.Millisecond
}

func (c *StreamConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

func (c *TypingConfig) MinDelay() time.Duration {
	return time.Duration(c.MinDelayMs) * time.Millisecond
}

func (c *TypingConfig) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelayMs) * time.Millisecond
}
