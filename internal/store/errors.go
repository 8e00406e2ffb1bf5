package store

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

func errNotFound(kind, id string) error {
	return NotFoundError{Kind: kind, ID: id}
}

// ValidationError is a request the store refuses to apply.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

func errInvalid(format string, args ...any) error {
	return ValidationError{Msg: fmt.Sprintf(format, args...)}
}
