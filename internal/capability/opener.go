// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package capability

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Opener hands URLs to the desktop environment.
type Opener interface {
	Capability
	Open(url string) error
}

// SystemOpener uses open, xdg-open or start depending on the OS.
type SystemOpener struct {
	lookPath func(string) (string, error)
}

// NewSystemOpener returns the opener for the running OS.
func NewSystemOpener() SystemOpener {
	return SystemOpener{lookPath: exec.LookPath}
}

func (o SystemOpener) command(url string) (*exec.Cmd, bool) {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("cmd", "/c", "start", `""`, url), true
	case "darwin":
		return exec.Command("open", url), true
	default:
		if o.lookPath == nil {
			return nil, false
		}
		if _, err := o.lookPath("xdg-open"); err != nil {
			return nil, false
		}
		return exec.Command("xdg-open", url), true
	}
}

// Supported implements Capability.
func (o SystemOpener) Supported() bool {
	_, ok := o.command("")
	return ok
}

// Open implements Opener. It does not wait for the handler to exit.
func (o SystemOpener) Open(url string) error {
	cmd, ok := o.command(url)
	if !ok {
		return ErrUnsupported
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	go cmd.Wait()
	return nil
}

// TelURL builds a tel: link for number.
func TelURL(number string) string {
	return "tel:" + number
}
