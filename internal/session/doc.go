// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session resets idle conversations.
//
// Hospital workstations are shared: a nurse who opens the assistant and
// walks away must not leave their conversation on screen for the next
// person. The timer holds one deferred reset callback, rescheduled on
// every interaction and cleared when the chat closes.
package session
