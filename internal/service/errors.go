package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when a call needs a session and has none.
	ErrUnauthenticated = errors.New("not signed in")

	// ErrInvalidCredentials is returned when email and password do not match an account.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when an email already belongs to another account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrRecentLoginRequired is returned for sensitive operations when the
	// session's last password check is too old. Re-authenticate and retry.
	ErrRecentLoginRequired = errors.New("recent login required")

	// ErrTokenRevoked is returned when a signed-out token is presented.
	ErrTokenRevoked = errors.New("session has been signed out")

	// ErrPaymentDeclined is returned by a provider that refused the charge.
	ErrPaymentDeclined = errors.New("payment declined")
)

// ValidationError reports bad user input for a single form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// FieldOf returns the offending field of a validation error, or "" if err is
// not one.
func FieldOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}

// RemoteCallError wraps a failed call to an external collaborator such as the
// geocoder, a payment provider or the message broker.
type RemoteCallError struct {
	Op  string
	Err error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

func remoteFailure(op string, err error) error {
	return &RemoteCallError{Op: op, Err: err}
}
