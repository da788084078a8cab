package models

import "errors"

// Sentinel errors shared across repositories and services. Callers match
// with errors.Is and map them to their own surface (exit codes, HTTP codes).
var (
	// ErrValidation marks an invalid field value: bad enum member,
	// non-positive amount, malformed final digits.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a uniqueness violation: duplicate exchange rate for
	// a date pair, duplicate invoice period, duplicate checklist row for a
	// month.
	ErrConflict = errors.New("conflict")

	// ErrInvalidRef marks a payment status that references zero or more than
	// one obligation. Checked before any derivation runs.
	ErrInvalidRef = errors.New("invalid payment reference")

	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
)
