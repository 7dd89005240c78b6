// Package common defines sentinel errors and constants shared by the server
// and the CLI client. Callers should match errors with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors. ErrorInternal marks every failure that is not one
	// of the others; its cause stays wrapped next to it.
	ErrorValidation       = errors.New("validation error")
	ErrorInternal         = errors.New("internal error")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token errors. Every specific kind below wraps ErrInvalidToken.
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingToken   = tokenError("missing token")
	ErrMalformedToken = tokenError("malformed token")
	ErrBadSignature   = tokenError("bad token signature")
	ErrTokenExpired   = tokenError("token expired")
)

type tokenErr struct {
	msg string
}

func tokenError(msg string) error {
	return &tokenErr{msg: msg}
}

func (e *tokenErr) Error() string { return e.msg }

func (e *tokenErr) Unwrap() error { return ErrInvalidToken }
