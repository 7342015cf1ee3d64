// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for all CLI commands.
//
// STANDARDIZED PATTERN:
//   - ALWAYS return errors (never just print and return nil)
//   - Let main decide how to display errors and which exit code to use
//   - Use structured error types so exit codes follow the error, not its text
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/medibot/medibot-tui/internal/auth"
	"github.com/medibot/medibot-tui/internal/backend"
	"github.com/medibot/medibot-tui/internal/config"
	"github.com/medibot/medibot-tui/internal/tracker"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates a sign-in or account failure
	ExitAuthError = 4
	// ExitNetworkError indicates the MediBot service could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a session or file was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "session")
	Action  string // Action being performed (e.g., "export")
	Err     error  // Underlying error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf(" (example: %s)", e.Example)
	}
	return msg
}

// UsageError is a malformed command line.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// NotFoundError represents a resource that was not found.
type NotFoundError struct {
	Resource string // Type of resource (e.g., "session")
	ID       string // Identifier of the resource
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(argName, usage string) error {
	return &UsageError{Message: fmt.Sprintf("missing %s\nUsage: %s", argName, usage)}
}

// ErrNotFound reports a missing resource.
func ErrNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err for a human, or as a JSON error response.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		DisplayErrorJSON(w, err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), err.Error())
}

// DisplayErrorJSON outputs an error as JSON with its category.
func DisplayErrorJSON(w io.Writer, err error) {
	output := map[string]interface{}{
		"error":      err.Error(),
		"success":    false,
		"error_type": errorType(err),
		"exit_code":  GetExitCode(err),
	}

	var verr *ValidationError
	var nf *NotFoundError
	switch {
	case errors.As(err, &verr):
		output["field"] = verr.Field
		output["reason"] = verr.Reason
	case errors.As(err, &nf):
		output["resource"] = nf.Resource
		output["id"] = nf.ID
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output)
}

func errorType(err error) string {
	switch GetExitCode(err) {
	case ExitUsageError:
		return "validation_error"
	case ExitConfigError:
		return "config_error"
	case ExitAuthError:
		return "auth_error"
	case ExitNetworkError:
		return "network_error"
	case ExitNotFoundError:
		return "not_found_error"
	case ExitTimeoutError:
		return "timeout_error"
	default:
		return "generic_error"
	}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error from its type.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		validationErr *ValidationError
		usageErr      *UsageError
		ttyErr        *TTYRequiredError
		formErrs      tracker.ValidationErrors
		notFoundErr   *NotFoundError
		configErrs    config.ValidateErrors
		backendErr    *backend.Error
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &usageErr),
		errors.As(err, &ttyErr), errors.As(err, &formErrs):
		return ExitUsageError

	case errors.As(err, &notFoundErr):
		return ExitNotFoundError

	case errors.As(err, &configErrs):
		return ExitConfigError

	case auth.IsValidation(err),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrAccountExists),
		errors.Is(err, auth.ErrTOTPRequired),
		errors.Is(err, auth.ErrInvalidTOTP),
		errors.Is(err, auth.ErrNotSignedIn):
		return ExitAuthError

	case errors.Is(err, backend.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError

	case errors.As(err, &backendErr):
		return ExitNetworkError
	}

	return ExitGeneralError
}
