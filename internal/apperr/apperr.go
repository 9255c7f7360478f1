// Package apperr carries the error taxonomy shared by the HTTP layer and the
// services behind it.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindNotFound
	KindInsufficientStock
	KindConflict
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "InvalidRequest"
	case KindNotFound:
		return "NotFound"
	case KindInsufficientStock:
		return "InsufficientStock"
	case KindConflict:
		return "Conflict"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	}
	return "Internal"
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindInvalidRequest, KindInsufficientStock:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

// Error is a caller-visible failure: Code is machine readable, Message is
// meant for humans. Err keeps the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Invalid(code, format string, args ...any) *Error {
	return New(KindInvalidRequest, code, fmt.Sprintf(format, args...))
}

func NotFound(code, format string, args ...any) *Error {
	return New(KindNotFound, code, fmt.Sprintf(format, args...))
}

func InsufficientStock(productName string) *Error {
	return New(KindInsufficientStock, "INSUFFICIENT_STOCK", "insufficient stock for "+productName)
}

func Conflict(code, format string, args ...any) *Error {
	return New(KindConflict, code, fmt.Sprintf(format, args...))
}

// Internal wraps an unexpected failure. The message never reaches the client.
func Internal(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of err, KindInternal for anything that is not an
// *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
