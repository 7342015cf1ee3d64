// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package capability

import (
	"context"
	"fmt"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// String formats the pair to four decimals, as read out to dispatchers.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// Valid reports whether the pair is on the globe.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Locator reports where the user is.
type Locator interface {
	Capability
	Locate(ctx context.Context) (Coordinates, error)
}

// StaticLocator returns a fixed, configured position.
type StaticLocator struct {
	Coords Coordinates
}

// Supported implements Capability.
func (StaticLocator) Supported() bool { return true }

// Locate implements Locator.
func (l StaticLocator) Locate(ctx context.Context) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	return l.Coords, nil
}

// NoLocator is used when no position is configured.
type NoLocator struct{}

// Supported implements Capability.
func (NoLocator) Supported() bool { return false }

// Locate implements Locator.
func (NoLocator) Locate(context.Context) (Coordinates, error) {
	return Coordinates{}, ErrUnsupported
}

// NewLocator returns a StaticLocator for coords when set, else NoLocator.
func NewLocator(coords *Coordinates) Locator {
	if coords == nil || !coords.Valid() {
		return NoLocator{}
	}
	return StaticLocator{Coords: *coords}
}
