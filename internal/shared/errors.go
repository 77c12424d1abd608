package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrBadIdentifier indicates a lookup keyed with the wrong identifier type.
	ErrBadIdentifier = errors.New("bad identifier")
)
