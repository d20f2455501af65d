// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package errors defines the error taxonomy shared by the authorization engine.
//
// Credential mismatches are not errors: they are reported by returning the
// anonymous principal. The types below cover the remaining two classes:
// contract violations at a call site (ErrInvalidArgument, ErrUnsupported) and
// backend failures (ErrRepository, ErrCrypto) that the endpoint layer should
// map to "service unavailable" rather than "invalid credentials".
package errors

import (
	"errors"
	"fmt"
)

// Error types
const (
	// ErrInvalidArgument is returned when a caller violates an input contract
	ErrInvalidArgument = "invalid_argument"

	// ErrRepository is returned when the token storage backend fails
	ErrRepository = "repository"

	// ErrCrypto is returned when a cipher, key derivation or random read fails
	ErrCrypto = "crypto"

	// ErrUnsupported is returned when a collaborator lacks an optional capability
	ErrUnsupported = "unsupported"

	// ErrInternal is returned when there is an internal error
	ErrInternal = "internal"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string, cause error) *Error {
	return NewError(ErrInvalidArgument, message, cause)
}

// NewRepositoryError creates a new repository error
func NewRepositoryError(message string, cause error) *Error {
	return NewError(ErrRepository, message, cause)
}

// NewCryptoError creates a new crypto error
func NewCryptoError(message string, cause error) *Error {
	return NewError(ErrCrypto, message, cause)
}

// NewUnsupportedError creates a new unsupported capability error
func NewUnsupportedError(message string, cause error) *Error {
	return NewError(ErrUnsupported, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *Error {
	return NewError(ErrInternal, message, cause)
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return hasType(err, ErrInvalidArgument)
}

// IsRepository checks if the error is a repository error
func IsRepository(err error) bool {
	return hasType(err, ErrRepository)
}

// IsCrypto checks if the error is a crypto error
func IsCrypto(err error) bool {
	return hasType(err, ErrCrypto)
}

// IsUnsupported checks if the error is an unsupported capability error
func IsUnsupported(err error) bool {
	return hasType(err, ErrUnsupported)
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	return hasType(err, ErrInternal)
}

// hasType walks the wrap chain, so fmt.Errorf("...: %w", e) still matches.
func hasType(err error, errorType string) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == errorType {
			return true
		}
		err = e.Cause
	}
	return false
}
