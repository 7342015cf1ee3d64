// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package emergency

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/medibot/medibot-tui/internal/capability"
)

// =============================================================================
// SCREEN TEXT
// =============================================================================

const (
	Title       = "Emergency Assistance"
	Instruction = "If you are in immediate danger or require urgent help, please call emergency services immediately."
	ShareLabel  = "Share My Location (Optional)"
	Locating    = "Locating..."
	CallLabel   = "Call Emergency Services"

	// NoLocation is shown when location sharing is unavailable or failed.
	NoLocation = "Location is not available on this device."
)

// DefaultNumber is dialled when none is configured.
const DefaultNumber = "911"

// =============================================================================
// SCREEN
// =============================================================================

// Location is the outcome of a share request.
type Location struct {
	Coords capability.Coordinates
	OK     bool
}

// String returns "Location: lat, lon" or NoLocation.
func (l Location) String() string {
	if !l.OK {
		return NoLocation
	}
	return "Location: " + l.Coords.String()
}

// Screen backs the emergency overlay and the emergency subcommand.
type Screen struct {
	number  string
	locator capability.Locator
	opener  capability.Opener
}

// NewScreen creates a screen. Nil capabilities are treated as unsupported.
func NewScreen(number string, locator capability.Locator, opener capability.Opener) *Screen {
	if number == "" {
		number = DefaultNumber
	}
	if locator == nil {
		locator = capability.NoLocator{}
	}
	return &Screen{number: number, locator: locator, opener: opener}
}

// Number returns the emergency number.
func (s *Screen) Number() string { return s.number }

// TelURL returns the tel: link for the emergency number.
func (s *Screen) TelURL() string { return capability.TelURL(s.number) }

// CanLocate reports whether location sharing is offered.
func (s *Screen) CanLocate() bool { return s.locator.Supported() }

// CanCall reports whether the platform can open tel: links.
func (s *Screen) CanCall() bool { return s.opener != nil && s.opener.Supported() }

// ShareLocation asks the locator for the current position. Failures are
// logged and reported as an unavailable location, never as an error.
func (s *Screen) ShareLocation(ctx context.Context) Location {
	coords, err := s.locator.Locate(ctx)
	if err != nil {
		if !errors.Is(err, capability.ErrUnsupported) {
			log.Printf("LOCATION_ERROR | err=%v", err)
		}
		return Location{}
	}
	return Location{Coords: coords, OK: true}
}

// Call opens the tel: link. It returns capability.ErrUnsupported when the
// platform has no URL handler.
func (s *Screen) Call() error {
	if !s.CanCall() {
		return capability.ErrUnsupported
	}
	if err := s.opener.Open(s.TelURL()); err != nil {
		log.Printf("EMERGENCY_CALL_ERROR | number=%s err=%v", s.number, err)
		return fmt.Errorf("call %s: %w", s.number, err)
	}
	log.Printf("EMERGENCY_CALL | number=%s", s.number)
	return nil
}
