// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package capability wraps host services that may not exist on every
// platform: speech output, speech input, geolocation, file reading and
// URL opening.
//
// Every capability reports Supported(); calling an unsupported one returns
// ErrUnsupported so callers can show a "not available" message instead of
// failing.
//
// # Key Types
//
//   - Speaker / CommandSpeaker: text-to-speech via say, espeak or spd-say
//   - SpeechToggle: per-message play/stop toggle
//   - Listener: speech-to-text (never supported in a terminal)
//   - Locator / StaticLocator: coordinates for the emergency screen
//   - FileReader / OSFileReader: bounded file reads with MIME detection
//   - Opener: hand a URL (tel:, https:) to the desktop
package capability

import "errors"

// ErrUnsupported is returned by capabilities the host does not provide.
var ErrUnsupported = errors.New("capability not supported on this system")

// Capability is the part every host service shares.
type Capability interface {
	Supported() bool
}
