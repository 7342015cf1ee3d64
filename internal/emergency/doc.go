// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package emergency implements the emergency assistance screen and the
// consult-doctor request.
//
// The screen shows the configured emergency number, offers optional location
// sharing through a capability.Locator, and dials through a
// capability.Opener with a tel: link. A consult request has no backend
// endpoint; it is recorded as a structured log line.
//
// # Usage
//
//	scr := emergency.NewScreen("911", cfg.Locator(), capability.NewSystemOpener())
//	loc := scr.ShareLocation(ctx)
//	err := scr.Call()
package emergency
