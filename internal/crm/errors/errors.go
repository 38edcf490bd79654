// Package errors defines the error taxonomy shared by the storage, service
// and transport layers.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = fmt.Errorf("not found")
	ErrInvalidReference = fmt.Errorf("referenced entity not found")
	ErrInvalidInput     = fmt.Errorf("invalid input")
)

// EntityError attaches the entity kind to ErrNotFound or ErrInvalidReference.
type EntityError struct {
	Kind   error
	Entity string
}

func (e *EntityError) Error() string {
	return e.Entity + " not found"
}

func (e *EntityError) Unwrap() error {
	return e.Kind
}

// NotFound reports that the requested entity does not exist.
func NotFound(entity string) error {
	return &EntityError{Kind: ErrNotFound, Entity: entity}
}

// MissingReference reports that a foreign key names a row that does not exist.
func MissingReference(entity string) error {
	return &EntityError{Kind: ErrInvalidReference, Entity: entity}
}

// EntityOf returns the entity named by err, if any.
func EntityOf(err error) (string, bool) {
	var entityErr *EntityError
	if errors.As(err, &entityErr) {
		return entityErr.Entity, true
	}
	return "", false
}
