// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package portal defines the host-application services the assistant
// engine binds to: authentication state, theme control, and navigation.
//
// The engine never talks to the hospital portal directly. It consumes
// these three small interfaces, which the embedding application
// implements against its real session, router, and theme machinery.
// In-memory implementations are provided for tests and the demo binary.
//
// # Key Types
//
//   - Auth: login state, current user, and access token for API calls
//   - Theme: dark/light mode query and toggle
//   - Navigator: current location and URL navigation
//   - User: display name plus role and permission sets
package portal
