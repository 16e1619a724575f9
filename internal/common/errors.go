// Package common defines shared constants, sentinel errors and small
// byte-slice helpers used across client and server layers of SealDrop.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrKeyMaterialRejected is returned by the metadata boundary when a
	// field that is about to be persisted contains PEM key material.
	// Key material lives only inside archived manifests, never in the
	// relational store.
	ErrKeyMaterialRejected = errors.New("key material rejected")
)
