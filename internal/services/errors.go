package services

import (
	"errors"
	"fmt"

	"astro-admin-go/internal/apiclient"
)

// ServiceError is a failure detected before any request reaches the
// backend.
type ServiceError struct {
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrNotFound(msg string) error {
	return ServiceError{Status: 404, Message: msg}
}

func ErrBadRequest(msg string) error {
	return ServiceError{Status: 400, Message: msg}
}

func ErrUnauthorized(msg string) error {
	return ServiceError{Status: 401, Message: msg}
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// StatusOf reports the HTTP status for a local or upstream error, 0 when
// neither carries one.
func StatusOf(err error) int {
	var svcErr ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Status
	}
	return apiclient.StatusOf(err)
}

// Message is the user-facing text for err.
func Message(err error) string {
	var svcErr ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return apiclient.Message(err)
}
