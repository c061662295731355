package domain

import (
	"fmt"
	"strings"
)

// FieldErrorKind classifies construction-time field violations.
type FieldErrorKind string

const (
	FieldMissing       FieldErrorKind = "missing_field"
	FieldInvalidFormat FieldErrorKind = "invalid_format"
	FieldNegativeValue FieldErrorKind = "negative_value"
)

// InvalidEntityError reports a field violation at entity construction time.
// Fields are never silently coerced.
type InvalidEntityError struct {
	Field string
	Kind  FieldErrorKind
}

func (e *InvalidEntityError) Error() string {
	return fmt.Sprintf("invalid entity: field %q (%s)", e.Field, e.Kind)
}

// IllegalTransitionError reports a stage-machine rule violation. The lead
// is left unchanged when this is returned.
type IllegalTransitionError struct {
	From   Stage
	To     Stage
	Detail string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s: %s", e.From, e.To, e.Detail)
}

// QualificationIncompleteError reports a failed tier-boundary gate.
type QualificationIncompleteError struct {
	Missing []string
	Passing bool
}

func (e *QualificationIncompleteError) Error() string {
	if len(e.Missing) > 0 {
		return "qualification incomplete: missing " + strings.Join(e.Missing, ", ")
	}
	return "qualification does not pass the current policy"
}

// PreconditionError reports a failed conversion gate, carrying the unmet
// condition.
type PreconditionError struct {
	Condition string
}

func (e *PreconditionError) Error() string {
	return "precondition not met: " + e.Condition
}
