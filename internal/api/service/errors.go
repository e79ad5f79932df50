package service

import (
	"errors"
	"fmt"
	"strings"

	"yamdb/internal/api/access"
	"yamdb/internal/api/models"
	"yamdb/internal/api/validation"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
	ErrInvalidToken    = errors.New("invalid token")
)

// ValidationError carries field keyed messages and maps to 400.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Fields.Error())
}

func fieldError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Fields: validation.Errors{field: {fmt.Sprintf(format, args...)}}}
}

// notFound turns a missing record into ErrNotFound and passes anything else
// through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite errors are not translated by gorm
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func accessError(d access.Decision) error {
	switch d {
	case access.Unauthenticated:
		return ErrUnauthenticated
	case access.Forbidden:
		return ErrForbidden
	}
	return nil
}

func owns(actor *models.User, authorID uint) bool {
	return actor != nil && actor.ID == authorID
}
