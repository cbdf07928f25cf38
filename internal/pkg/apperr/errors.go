package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
)

// NotFoundError reports a missing employee, counter, consolidation or item.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// InvalidStateError reports an operation attempted from a status that does not allow it.
type InvalidStateError struct {
	Resource  string
	ID        string
	Operation string
	Current   string
	Required  []string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %s in status %q: requires %s",
		e.Operation, e.Resource, e.ID, e.Current, strings.Join(e.Required, " or "))
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

func InvalidState(resource, id, operation, current string, required ...string) error {
	return &InvalidStateError{
		Resource:  resource,
		ID:        id,
		Operation: operation,
		Current:   current,
		Required:  required,
	}
}

// ConflictError reports a uniqueness violation, typically a concurrent double create.
type ConflictError struct {
	Resource string
	Key      string
	Err      error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s already exists: %s (%v)", e.Resource, e.Key, e.Err)
	}
	return fmt.Sprintf("%s already exists: %s", e.Resource, e.Key)
}

func (e *ConflictError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConflict, e.Err}
	}
	return []error{ErrConflict}
}

func Conflict(resource, key string, err error) error {
	return &ConflictError{Resource: resource, Key: key, Err: err}
}

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }
