// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeStatus
	ErrTypeDecode
	ErrTypeRequest
)

// String returns the error type name used in logs.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeStatus:
		return "status"
	case ErrTypeDecode:
		return "decode"
	case ErrTypeRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method that fails.
type Error struct {
	Type       ErrorType
	Endpoint   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	msg := e.Endpoint + ": " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match on the sentinel of the same type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Endpoint == "" && t.Type == e.Type
}

// Sentinel errors for errors.Is checks.
var (
	ErrConnection = &Error{Type: ErrTypeConnection, Message: "backend unreachable"}
	ErrTimeout    = &Error{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrStatus     = &Error{Type: ErrTypeStatus, Message: "unexpected status"}
	ErrDecode     = &Error{Type: ErrTypeDecode, Message: "invalid response"}
)

func typeOf(err error) ErrorType {
	var be *Error
	if errors.As(err, &be) {
		return be.Type
	}
	return ErrTypeUnknown
}

// IsConnection reports whether err means the backend could not be reached.
func IsConnection(err error) bool {
	return typeOf(err) == ErrTypeConnection
}

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool {
	return typeOf(err) == ErrTypeTimeout
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.StatusCode
	}
	return 0
}
