package cache

import "errors"

var (
	// ErrRegistryNotFound is returned when an operation targets a registry
	// that was not bound at startup.
	ErrRegistryNotFound = errors.New("registry not found")

	// ErrUnexpectedResponse is returned when a backend reply does not match
	// the capability contract. It is a safety net against contract
	// violations, not something a healthy backend produces.
	ErrUnexpectedResponse = errors.New("unexpected backend response")
)
