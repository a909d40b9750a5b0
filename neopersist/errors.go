package neopersist

import "errors"

var (
	// ErrNotFound is a sentinel error returned by Find operations when no record
	// matching the criteria is found in the database.
	ErrNotFound = errors.New("record not found")

	// ErrConstraintViolation is matched by errors raised when a write breaks a
	// schema constraint, such as a duplicate value on a unique property.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrMultipleResults is returned by single-result lookups that matched more than one record.
	ErrMultipleResults = errors.New("expected a single record")
)
