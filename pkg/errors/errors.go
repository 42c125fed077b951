// Package errors provides structured error types for the repolens application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and dashboard API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The fetch layer maps every provider failure to one of a small closed set of
// codes. Callers branch on codes, never on raw provider payloads:
//   - INVALID_INPUT: malformed identifier, path, or credential (rejected before
//     any network call)
//   - NOT_FOUND: resource does not exist or is inaccessible with the current
//     credential
//   - RATE_LIMITED: the hourly quota is exhausted
//   - STILL_COMPUTING: the provider is preparing a statistic asynchronously
//   - FETCH_FAILED: any other transport or provider failure
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "file %s not found", path)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing resource
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFetchFailed, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidRepoRef    Code = "INVALID_REPO_REF"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidCredential Code = "INVALID_CREDENTIAL"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeRepoNotFound Code = "REPO_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Quota and provider-side delays
	ErrCodeRateLimited    Code = "RATE_LIMITED"
	ErrCodeStillComputing Code = "STILL_COMPUTING"

	// Transport errors
	ErrCodeFetchFailed Code = "FETCH_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RateLimitedError provides additional information for rate-limited responses.
// Authenticated distinguishes the two user-actionable remedies: adding a token
// to raise the limit versus waiting for the quota window to roll.
type RateLimitedError struct {
	RetryAfter    int  // Seconds until the quota window resets
	Authenticated bool // Whether a credential was active when the limit hit
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// UserMessage returns the actionable message for the current auth state.
func (e *RateLimitedError) UserMessage() string {
	if e.Authenticated {
		if e.RetryAfter > 0 {
			return fmt.Sprintf("GitHub API rate limit exceeded; try again in %d seconds", e.RetryAfter)
		}
		return "GitHub API rate limit exceeded; try again later"
	}
	return "GitHub API rate limit exceeded; add an access token to raise your hourly limit from 60 to 5,000 requests"
}

// StillComputingError indicates GitHub is preparing a statistic asynchronously.
// The request is retryable after a short delay.
type StillComputingError struct {
	Resource string
}

// Error implements the error interface.
func (e *StillComputingError) Error() string {
	return fmt.Sprintf("GitHub is still computing %s; retry in a few seconds", e.Resource)
}
