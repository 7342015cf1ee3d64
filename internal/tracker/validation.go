// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tracker

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is a problem with one form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for field, if any.
func (e ValidationErrors) Field(field string) (string, bool) {
	for _, err := range e {
		if err.Field == field {
			return err.Message, true
		}
	}
	return "", false
}

func (e *ValidationErrors) add(field, format string, args ...any) {
	*e = append(*e, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// err returns nil for an empty collection so callers can return it directly.
func (e ValidationErrors) err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// IsValidation reports whether err carries ValidationErrors.
func IsValidation(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}
