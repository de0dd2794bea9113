// Package apperr defines the error kinds shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrAlreadyExists  = errors.New("already exists")
	ErrUploadRejected = errors.New("upload rejected")
	ErrTokenExpired   = errors.New("reset token has expired")
	ErrInvalidToken   = errors.New("invalid or expired reset token")
	ErrRateLimited    = errors.New("too many requests")
	ErrUpstream       = errors.New("upstream failure")
)

// Credential failure reasons reported by login.
const (
	ReasonUsernameNotFound  = "username_not_found"
	ReasonIncorrectPassword = "incorrect_password"
)

// CredentialsError reports why a login attempt failed.
type CredentialsError struct {
	Reason string
}

func (e *CredentialsError) Error() string {
	return "invalid credentials: " + e.Reason
}

// ValidationError carries field-level messages for a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// FromValidation converts ozzo-validation errors into a ValidationError.
// Errors that are not field errors (internal rule failures) are returned unchanged.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for k, v := range verrs {
		var ie validation.InternalError
		if errors.As(v, &ie) {
			return ie.InternalError()
		}
		fields[k] = v.Error()
	}
	return &ValidationError{Fields: fields}
}
