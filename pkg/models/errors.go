package models

import (
	"errors"
	"fmt"
)

// The model layer distinguishes four failure classes so callers can react
// differently instead of collapsing everything into a boolean: validation
// failures, missing records, conflicts (duplicate title, identifier already
// taken), and data-integrity faults (a malformed identifier already stored).
// Anything else is a storage error and is returned as-is.

// NotFoundError indicates the requested record does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ConflictError indicates a uniqueness conflict on the named field.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %q", e.Field, e.Value)
}

// ValidationError indicates the record failed field validation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IntegrityError indicates stored data violates an invariant the code relies
// on, e.g. a previously persisted identifier that cannot be parsed. These are
// never retried.
type IntegrityError struct {
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("data integrity error: %v", e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsConflictOn reports whether err is a ConflictError on the given field.
func IsConflictOn(err error, field string) bool {
	var c *ConflictError
	return errors.As(err, &c) && c.Field == field
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsIntegrity reports whether err is an IntegrityError.
func IsIntegrity(err error) bool {
	var i *IntegrityError
	return errors.As(err, &i)
}
