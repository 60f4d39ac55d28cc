// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package routes builds and queries the navigable screen catalog.
//
// The host application hands the engine its static route tree. The
// catalog walks it once per signed-in user, drops redirects, wildcards
// and untitled nodes, applies the user's permission set, and tags each
// surviving screen with its configured keyword synonyms. The result is
// memoized with a TTL, since route visibility follows live permission
// state, and invalidated outright on logout.
//
// Lookups run in three stages: exact key, key with the app-root segment
// stripped, then fuzzy containment against key, URL, folded title and
// keywords.
package routes
