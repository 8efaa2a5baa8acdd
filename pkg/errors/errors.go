package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error carrying the same code, so clones compare equal to their template.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

var (
	registryMu sync.RWMutex
	registry   = map[string]int{}
)

// New creates an Error and records its code so StatusFor can resolve it.
func New(code string, status int, message string) *Error {
	registryMu.Lock()
	if _, ok := registry[code]; !ok {
		registry[code] = status
	}
	registryMu.Unlock()
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Orchestrator outcomes and transport failures.
var (
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrTargetNotFound      = New("TARGET_NOT_FOUND", http.StatusNotFound, "modification target not found")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized        = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict            = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCollaborator        = New("COLLABORATOR_FAILURE", http.StatusBadGateway, "matching collaborator failed")
	ErrListener            = New("LISTENER_FAILURE", http.StatusInternalServerError, "listener failed")
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrTerminalConflict    = New("CONFLICT_TERMINAL", http.StatusConflict, "conflict is already closed")
	ErrRetryInFlight       = New("RETRY_IN_FLIGHT", http.StatusConflict, "a retry is already running for this conflict")
	ErrPersistenceDisabled = New("PERSISTENCE_DISABLED", http.StatusServiceUnavailable, "roster persistence is not configured")
)

// StatusFor maps a registered code to its HTTP status. Unknown codes map to 500.
func StatusFor(code string) int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if status, ok := registry[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies err, replacing the message when one is given.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
