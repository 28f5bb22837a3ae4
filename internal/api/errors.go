package api

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every feature package. Handlers translate these
// into HTTP status codes with errors.Is / errors.As.
var (
	// ErrNotFound signals that no record matches a required key (id, email
	// or nickname lookup).
	ErrNotFound = errors.New("requested resource not found")

	// ErrConflict signals that a mutation would violate the email/nickname
	// uniqueness invariant. Usually carried inside a ConflictError.
	ErrConflict = errors.New("resource already exists or conflicts")

	// ErrBadCredentials signals a password mismatch. It never leaves the
	// auth service: login collapses it into ErrUnauthenticated.
	ErrBadCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is the single outward-facing login failure. Both
	// "no such user" and "wrong password" map here so a caller cannot tell
	// whether an email is registered.
	ErrUnauthenticated = errors.New("authentication rejected")

	// ErrLookupFailure signals that the remote credential lookup itself
	// could not be completed. Distinct from ErrNotFound: a 404 from the
	// rider service is a normal outcome, a transport error is not.
	ErrLookupFailure = errors.New("credential lookup failed")

	// Token verification failures, each distinct so callers can tell
	// "expired" from "forged" from "corrupt".
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenMalformed        = errors.New("token malformed")

	// ErrInternal covers infrastructure faults that must not be swallowed.
	ErrInternal = errors.New("internal error")
)

// ConflictError reports which uniqueness constraint a create or update would
// break. It wraps ErrConflict so errors.Is(err, ErrConflict) still holds.
type ConflictError struct {
	Field string // "email" or "nickname"
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a rider is already registered with %s: %s", e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
