package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/talent-sourcer/internal/rank"
	"github.com/jonathan/talent-sourcer/internal/schemas"
)

// ErrInvalidCredentials indicates the presented API secret is wrong
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid client credentials"
}

// ErrProfileNotFound indicates no published profile has the given ID
type ErrProfileNotFound struct {
	ProfileID string
}

func (e *ErrProfileNotFound) Error() string {
	return fmt.Sprintf("profile not found: %s", e.ProfileID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var cursorErr *rank.ErrInvalidCursor
	var validationErr *schemas.ValidationError
	switch {
	case errors.As(err, &cursorErr):
		return http.StatusBadRequest
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	}

	switch err.(type) {
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrProfileNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
