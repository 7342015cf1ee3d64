// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant runs MediBot's chat turns: it records the user's
// message, shows a loading placeholder, asks the backend, and replaces the
// placeholder with the answer or a friendly error.
//
// Backend failures never escape a turn. They are logged and turned into a
// bot message; the returned Reply says whether the turn failed.
//
// # Usage
//
//	svc := assistant.New(store, client)
//	reply, err := svc.Send(ctx, "I have a headache")
//	if err != nil {
//	    // empty input or a storage failure
//	}
//	fmt.Println(format.Format(reply.Message.Text))
package assistant
