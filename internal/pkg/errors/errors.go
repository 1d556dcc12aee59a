// Package errors holds the sentinels shared across layers. Handlers map them onto HTTP codes.
package errors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnavailable marks a dependency that is down, such as the database on a health probe.
	ErrUnavailable = errors.New("unavailable")
)
