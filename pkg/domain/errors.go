package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an id-keyed lookup fails.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ErrReferentialViolation is returned when a record references another
// record that does not exist in the same scope, e.g. a CCP naming a hazard
// that is not part of its plan.
type ErrReferentialViolation struct {
	Entity   EntityType
	ID       string
	Ref      EntityType
	RefID    string
	Relation string
}

func (e ErrReferentialViolation) Error() string {
	rel := e.Relation
	if rel == "" {
		rel = "references"
	}
	if e.ID == "" {
		return fmt.Sprintf("%s %s missing %s %s", e.Entity, rel, e.Ref, e.RefID)
	}
	return fmt.Sprintf("%s %s %s missing %s %s", e.Entity, e.ID, rel, e.Ref, e.RefID)
}

// ErrInvalidInput reports a malformed request field.
type ErrInvalidInput struct {
	Field  string
	Reason string
}

func (e ErrInvalidInput) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrUnknownParameter is returned under the strict limit policy when a
// reading names a parameter the CCP has no critical limit for.
type ErrUnknownParameter struct {
	CCPID     string
	Parameter string
}

func (e ErrUnknownParameter) Error() string {
	return fmt.Sprintf("ccp %s has no critical limit for parameter %q", e.CCPID, e.Parameter)
}

// IsNotFound reports whether err wraps an ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

// IsReferentialViolation reports whether err wraps an ErrReferentialViolation.
func IsReferentialViolation(err error) bool {
	var rv ErrReferentialViolation
	return errors.As(err, &rv)
}

// IsInvalidInput reports whether err wraps an ErrInvalidInput or an
// ErrUnknownParameter.
func IsInvalidInput(err error) bool {
	var ii ErrInvalidInput
	if errors.As(err, &ii) {
		return true
	}
	var up ErrUnknownParameter
	return errors.As(err, &up)
}
