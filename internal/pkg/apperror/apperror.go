package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindStorage
)

// UnauthenticatedMessage is the only message ever returned for failed authentication.
const UnauthenticatedMessage = "Missing or invalid authentication"

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindAuthentication:
		return "unauthorized"
	case KindAuthorization:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "internal_server_error"
	default:
		return "internal_server_error"
	}
}

// Error carries a Kind, a caller-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

func Unauthenticated() *Error {
	return &Error{Kind: KindAuthentication, Message: UnauthenticatedMessage}
}

func Forbidden(reason string) *Error {
	return &Error{Kind: KindAuthorization, Message: reason}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage operation failed", Err: err}
}

// FromStore maps a repository error: record-not-found becomes NotFound(what),
// anything else becomes a Storage error. Nil stays nil.
func FromStore(err error, what string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(what)
	}
	return Storage(err)
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps err to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show a client. Causes never leak.
func PublicMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "Internal server error"
	}
	switch appErr.Kind {
	case KindAuthentication:
		return UnauthenticatedMessage
	case KindStorage, KindInternal:
		return "Internal server error"
	default:
		return appErr.Message
	}
}
