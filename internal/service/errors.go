package service

import (
	"github.com/pkg/errors"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindPermission
	KindNotFound
	KindConflict
)

// Error is the service-layer error type. The transport maps Kind to an HTTP
// status; Message is safe to return to the client.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf reports the Kind carried by err, or KindInternal when err is not a
// service error.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

func errValidation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func errAuth(message string) error {
	return &Error{Kind: KindAuth, Message: message}
}

func errPermission(message string) error {
	return &Error{Kind: KindPermission, Message: message}
}

func errNotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func errConflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

func errInternal(cause error, message string) error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}
