// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the assistant orchestrator: the single stateful
// object tying the classifier, rate limiter, route catalog, model
// gateway, and tool executor into one conversation.
//
// The orchestrator owns the transcript. Every outcome, whether a canned
// reply, a refusal, a throttle notice, a streamed model answer, or a
// tool confirmation, lands as a transcript mutation; nothing above this
// boundary throws. Sends are single-flight: a second send while one is
// generating is rejected rather than queued.
//
// # Usage
//
//	o := chat.New(cfg, chat.Services{
//	    Auth: auth, Theme: theme, Navigator: nav, RouteTree: tree, AppRoot: "app",
//	}, logger)
//	defer o.Close()
//
//	o.ToggleChat()
//	o.SendMessage("mở báo cáo giường")
package chat
