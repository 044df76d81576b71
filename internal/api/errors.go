// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api defines the collaborator contracts the console consumes.
package api

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Status  int
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors by type.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Message == e.Message
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeInvalidResponse
	ErrTypeBadRequest
	ErrTypeServer
	ErrTypeRateLimited
)

// String returns a short name for the type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeBadRequest:
		return "bad_request"
	case ErrTypeServer:
		return "server"
	case ErrTypeRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrUnavailable = &ClientError{Type: ErrTypeConnection, Message: "backend is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrRateLimited = &ClientError{Type: ErrTypeRateLimited, Message: "too many suggestion requests"}
)

// TypeOf returns the ErrorType of err, or ErrTypeUnknown.
func TypeOf(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}
