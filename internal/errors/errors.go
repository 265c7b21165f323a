// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// Kind is the closed set of outcomes a persistence call or a validation step can report.
type Kind int

const (
	// KindStore is any store failure that is not one of the modeled conditions.
	KindStore Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	// KindIntegrity means a single-row operation touched more than one row.
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindIntegrity:
		return "integrity"
	default:
		return "store"
	}
}

// Error carries a Kind plus what the client may see about it.
// Err holds the underlying cause and is never rendered to clients.
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending column for conflicts.
	Field string
	// Fields maps request fields to validation messages.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidation(message string, fields map[string]string) error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NewNotFound(entity string) error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// NewConflict reports a unique-constraint violation on field.
func NewConflict(field string, cause error) error {
	msg := "value already exists"
	if field != "" {
		msg = field + " already exists"
	}
	return &Error{Kind: KindConflict, Message: msg, Field: field, Err: cause}
}

func NewIntegrity(affected int) error {
	return &Error{
		Kind:    KindIntegrity,
		Message: fmt.Sprintf("single-row operation affected %d rows", affected),
	}
}

func NewStore(op string, cause error) error {
	return &Error{Kind: KindStore, Message: op, Err: cause}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf classifies err. Errors outside the taxonomy are store errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindStore
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}
