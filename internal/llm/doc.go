// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm is the HTTP client for the assistant's model gateway.
//
// The gateway speaks an Ollama-compatible protocol: chat requests go to
// /api/chat and stream back newline-delimited JSON frames, each holding
// a message fragment and optionally tool calls. The client attaches the
// portal's bearer token, retries transient failures, and classifies
// errors so the orchestrator can tell "gateway down" from "bad model".
//
// # Key Types
//
//   - Client: health checks and streaming chat
//   - StreamReader: NDJSON decoding, content accumulation, tool-call
//     collection with per-name de-duplication
//   - Debouncer: coalesces partial-content updates for the UI
//   - ClientError: typed errors with errors.Is/As support
package llm
