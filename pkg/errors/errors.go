// Package errors provides structured error handling for tether.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input
	ExitRejected = 3 // The wallet rejected or failed the request
	ExitNotFound = 4 // Resource not found
)

// Network switch failure stages, reported in the "stage" detail.
const (
	StageSwitchRejected = "switch-rejected"
	StageAddRejected    = "add-rejected"
)

// TetherError is the structured error type for tether.
type TetherError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *TetherError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TetherError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for TetherError.
func (e *TetherError) Is(target error) bool {
	var t *TetherError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &TetherError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &TetherError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &TetherError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	// Session errors.
	ErrActivationFailed = &TetherError{
		Code:     "ACTIVATION_FAILED",
		Message:  "wallet activation failed",
		ExitCode: ExitRejected,
	}

	ErrUnknownProviderKind = &TetherError{
		Code:     "UNKNOWN_PROVIDER_KIND",
		Message:  "unknown provider kind",
		ExitCode: ExitInput,
	}

	ErrNoActiveSession = &TetherError{
		Code:       "NO_ACTIVE_SESSION",
		Message:    "no wallet is connected",
		Suggestion: "Run 'tether connect <provider>' first",
		ExitCode:   ExitInput,
	}

	ErrBusy = &TetherError{
		Code:     "BUSY",
		Message:  "a request is already in flight",
		ExitCode: ExitGeneral,
	}

	// Network errors.
	ErrNetworkSwitchFailed = &TetherError{
		Code:     "NETWORK_SWITCH_FAILED",
		Message:  "network switch failed",
		ExitCode: ExitRejected,
	}

	ErrNoNetworkSelected = &TetherError{
		Code:     "NO_NETWORK_SELECTED",
		Message:  "no target network selected",
		ExitCode: ExitInput,
	}

	ErrUnknownChain = &TetherError{
		Code:       "UNKNOWN_CHAIN",
		Message:    "unsupported chain id",
		Suggestion: "Run 'tether network list' to see supported networks",
		ExitCode:   ExitInput,
	}

	// Signing errors.
	ErrSigningFailed = &TetherError{
		Code:     "SIGNING_FAILED",
		Message:  "message signing failed",
		ExitCode: ExitRejected,
	}

	ErrVerificationFailed = &TetherError{
		Code:     "VERIFICATION_FAILED",
		Message:  "signature recovery failed",
		ExitCode: ExitRejected,
	}

	ErrMessageTooLong = &TetherError{
		Code:     "MESSAGE_TOO_LONG",
		Message:  "message exceeds maximum length",
		ExitCode: ExitInput,
	}

	ErrEmptyMessage = &TetherError{
		Code:     "EMPTY_MESSAGE",
		Message:  "no message to sign",
		ExitCode: ExitInput,
	}

	ErrNoSignature = &TetherError{
		Code:     "NO_SIGNATURE",
		Message:  "no signature to verify",
		ExitCode: ExitInput,
	}

	// Config-specific errors.
	ErrConfigInvalid = &TetherError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownConfigKey = &TetherError{
		Code:     "UNKNOWN_CONFIG_KEY",
		Message:  "unknown config key",
		ExitCode: ExitInput,
	}
)

// New creates a new TetherError with the given code and message.
func New(code, message string) *TetherError {
	return &TetherError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var se *TetherError
	if errors.As(err, &se) {
		return &TetherError{
			Code:       se.Code,
			Message:    fmt.Sprintf("%s: %s", msg, se.Message),
			Details:    se.Details,
			Suggestion: se.Suggestion,
			Cause:      se.Cause,
			ExitCode:   se.ExitCode,
		}
	}

	return &TetherError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithCause returns a copy of the sentinel carrying cause as its underlying error.
// The result still matches the sentinel with errors.Is.
func WithCause(sentinel *TetherError, cause error) error {
	return &TetherError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    sentinel.Details,
		Suggestion: sentinel.Suggestion,
		Cause:      cause,
		ExitCode:   sentinel.ExitCode,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var se *TetherError
	if errors.As(err, &se) {
		return &TetherError{
			Code:       se.Code,
			Message:    se.Message,
			Details:    details,
			Suggestion: se.Suggestion,
			Cause:      se.Cause,
			ExitCode:   se.ExitCode,
		}
	}

	return &TetherError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var se *TetherError
	if errors.As(err, &se) {
		return &TetherError{
			Code:       se.Code,
			Message:    se.Message,
			Details:    se.Details,
			Suggestion: suggestion,
			Cause:      se.Cause,
			ExitCode:   se.ExitCode,
		}
	}

	return &TetherError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// Detail returns the named detail of a TetherError, or "" when absent.
func Detail(err error, key string) string {
	var se *TetherError
	if errors.As(err, &se) {
		return se.Details[key]
	}
	return ""
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var se *TetherError
	if errors.As(err, &se) {
		return se.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var se *TetherError
	if errors.As(err, &se) {
		return se.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
