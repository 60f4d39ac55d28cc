// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ratelimit throttles chat sends with a sliding window.
//
// The limiter keeps a queue of recent send timestamps pruned to the
// window. Exceeding the ceiling starts a cooldown during which every
// further send is rejected immediately, regardless of how the window
// drains. State is in-memory only and resets with the session.
package ratelimit
