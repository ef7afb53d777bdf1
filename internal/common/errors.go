// Package common defines shared constants and sentinel errors used across
// client and server layers of monotes. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal        = errors.New("internal error")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrAlreadyExists   = errors.New("already exists")

	// Validation errors, rejected before any persistence or network attempt.
	ErrValidation = errors.New("validation error")

	// Remote transport errors.
	ErrUnavailable = errors.New("server unavailable")
	ErrOffline     = errors.New("offline")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
