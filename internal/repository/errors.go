package repository

import "errors"

// Allocator errors are sentinels so callers can tell a business rejection
// apart from an infrastructure failure and from plain not-found.
var (
	// ErrDuplicateNumber means the requested explicit number is already on
	// file in the issuance table (active or void).
	ErrDuplicateNumber = errors.New("number already issued")
	// ErrNumberNotFound means no issuance exists for the kind/number pair.
	ErrNumberNotFound = errors.New("number not found")
	// ErrNumberAlreadyVoid means the issuance is already marked void.
	ErrNumberAlreadyVoid = errors.New("number already void")
)
