/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error kinds in one place. Callers classify with errors.Is/As; the API
  layer maps these onto HTTP status codes.

ERROR CATEGORIES:
  1. Validation errors - rejected before any mutation (fail closed)
  2. Not-found errors  - record id or account name does not resolve
  3. Conflict errors   - uniqueness and lifecycle violations

ACCOUNT-NOT-FOUND vs NOT-FOUND:
  ErrAccountNotFound is distinct from ErrNotFound because it surfaces from
  the propagation engine: the referencing event may be left pointing at an
  account that no longer exists, which is a consistency signal, not just a
  bad id in a request.
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAccountNotFound is returned when propagation cannot resolve an
	// account name referenced by an event.
	ErrAccountNotFound = errors.New("account not found")

	// ErrValidation is returned for malformed or missing input fields.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateAccountName is returned when creating an account whose
	// name is already taken. Name uniqueness is the invariant that makes
	// name-keyed propagation safe.
	ErrDuplicateAccountName = errors.New("account name already exists")

	// ErrAccountInUse is returned when deleting an account that historical
	// events still reference by name.
	ErrAccountInUse = errors.New("account is referenced by existing events")

	// ErrCreditSettled is returned when recording a payment against a
	// credit that is already fully paid.
	ErrCreditSettled = errors.New("credit already settled")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AccountNotFoundError names the unresolved account.
type AccountNotFoundError struct {
	Name string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %q not found", e.Name)
}

func (e *AccountNotFoundError) Unwrap() error { return ErrAccountNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing record or account.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccountNotFound)
}

// IsClientError reports whether the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateAccountName) ||
		errors.Is(err, ErrAccountInUse) ||
		errors.Is(err, ErrCreditSettled)
}
