package common

import (
	"errors"
	"fmt"
	"net/http"

	"auth_api/internal/common/messages"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict")
	ErrInternalServer = errors.New("internal server error")
)

// ErrorKind is the machine-readable class of an authentication failure.
type ErrorKind string

const (
	KindMissingField      ErrorKind = "MISSING_FIELD"
	KindInvalidEmail      ErrorKind = "INVALID_EMAIL"
	KindWeakPassword      ErrorKind = "WEAK_PASSWORD"
	KindDuplicateEmail    ErrorKind = "DUPLICATE_EMAIL"
	KindDuplicateUsername ErrorKind = "DUPLICATE_USERNAME"
	KindUserNotFound      ErrorKind = "USER_NOT_FOUND"
	KindWrongPassword     ErrorKind = "WRONG_PASSWORD"

	KindInvalidPayload ErrorKind = "INVALID_PAYLOAD"
	KindUnauthorized   ErrorKind = "UNAUTHORIZED"
	KindInternal       ErrorKind = "INTERNAL_ERROR"
)

// AuthError is a caller-facing failure of the authentication workflow. Two
// AuthErrors match under errors.Is when their kinds are equal, so the
// sentinels below match regardless of the message key.
type AuthError struct {
	Kind ErrorKind
	Key  messages.Key
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Key)
}

func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingField      = &AuthError{Kind: KindMissingField, Key: messages.AllFieldsRequired}
	ErrInvalidEmail      = &AuthError{Kind: KindInvalidEmail, Key: messages.InvalidEmail}
	ErrWeakPassword      = &AuthError{Kind: KindWeakPassword, Key: messages.PasswordTooWeak}
	ErrDuplicateEmail    = &AuthError{Kind: KindDuplicateEmail, Key: messages.EmailTaken}
	ErrDuplicateUsername = &AuthError{Kind: KindDuplicateUsername, Key: messages.UsernameTaken}
	ErrUserNotFound      = &AuthError{Kind: KindUserNotFound, Key: messages.UserNotFound}
	ErrWrongPassword     = &AuthError{Kind: KindWrongPassword, Key: messages.WrongPassword}
)

// AsAuthError unwraps err to its *AuthError, if any.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if _, ok := AsAuthError(err); ok {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrBadRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == UniqueViolation {
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// UniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const UniqueViolation = "23505"
