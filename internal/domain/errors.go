package domain

import "errors"

var (
	// ErrUnresolvedConfig means neither a profile nor a direct browser could be found.
	ErrUnresolvedConfig = errors.New("unresolved config: no browser determinable")

	// ErrInvalidShape means a value read from an external source failed its guard.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrInvalidProfileName is returned for empty or overlong profile names.
	ErrInvalidProfileName = errors.New("invalid profile name")

	// ErrInvalidSite is returned when a site entry has no usable URL.
	ErrInvalidSite = errors.New("invalid site entry")
)
