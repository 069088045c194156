package storage

import (
	"errors"
	"fmt"

	"github.com/iudanet/wordkeeper/internal/models"
)

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrRecordNotFound indicates that record was not found
	ErrRecordNotFound = errors.New("record not found")

	// ErrCursorNotFound indicates that client was never registered for the user
	ErrCursorNotFound = errors.New("sync cursor not found")

	// ErrCursorExists indicates that client is already registered for the user
	ErrCursorExists = errors.New("sync cursor already exists")

	// ErrConflictExists indicates that conflict log entry with this id is already stored
	ErrConflictExists = errors.New("conflict log entry already exists")

	// ErrConstraint indicates a storage constraint violation
	ErrConstraint = errors.New("constraint violation")
)

// ConstraintError нарушение ограничения хранилища при записи конкретной записи
type ConstraintError struct {
	Err  error
	Kind models.Kind
	ID   string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind.DisplayName(), e.Err)
}

func (e *ConstraintError) Unwrap() []error {
	return []error{ErrConstraint, e.Err}
}
