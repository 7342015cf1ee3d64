// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the MediBot chat view for the TUI.
//
// The view shows the active conversation with a sidebar of archived chats,
// and overlays for the health tools, the profile forms and the emergency
// screen. Every conversation change goes through the session store; the
// view re-renders when the store notifies it.
//
// # Key Types
//
//   - Model: the Bubble Tea model
//   - Deps: the services the view drives
//   - KeyMap: keyboard bindings
//   - Form: an overlay form (BMI, mood, CBT, symptom, consult, profile)
//
// # Slash Commands
//
// Lines starting with "/" are commands, dispatched through a handler
// registry (commands.go). Tab completes a partly typed command name.
//
//	/new             archive the chat and start over
//	/image PATH      analyze a medical image
//	/bmi 70 175      calculate BMI
//	/export html     export the active chat
//	/emergency       open the emergency screen
//
// # Usage
//
//	m := chat.New(styles.NewTheme(), chat.Deps{
//		Assistant: assistantSvc,
//		Tracker:   trackerSvc,
//		Settings:  settingsMgr,
//		Auth:      provider,
//	})
//	p := tea.NewProgram(m, tea.WithAltScreen())
package chat
