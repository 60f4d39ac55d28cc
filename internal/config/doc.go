// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and watches the assistant engine configuration.
//
// Configuration is TOML with environment variable overrides and
// clamped validation: out-of-range tunables are pulled back into safe
// bounds instead of failing startup, since the assistant is embedded in
// a portal that must come up regardless. A file watcher rebuilds and
// republishes the config on change.
package config
