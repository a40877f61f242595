// Package apperr defines the domain error taxonomy shared by the cart,
// catalog, and order components. Handlers map these to HTTP statuses;
// anything else surfaces as a generic internal failure.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports bad input shape or range.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Kind string
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Ref)
}

func NotFound(kind, ref string) *NotFoundError {
	return &NotFoundError{Kind: kind, Ref: ref}
}

// UnavailableError reports an item that exists but is not orderable.
type UnavailableError struct {
	Name string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("item not available: %s", e.Name)
}

func Unavailable(name string) *UnavailableError {
	return &UnavailableError{Name: name}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
