// Package apierr carries the error taxonomy for the JSON API.
//
// Every error returned to an API client is classified by Kind, and Kind is
// translated to an HTTP status by a single table (see statusByKind). Handlers
// construct errors with the helpers below and hand them to Write; anything
// that is not an *Error is treated as Internal and its text is not exposed.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Kind classifies an API failure.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindInsufficientPermission
	KindValidation
	KindNotFound
	KindConflict
	KindRateLimited
)

var statusByKind = map[Kind]int{
	KindInternal:               http.StatusInternalServerError,
	KindUnauthenticated:        http.StatusUnauthorized,
	KindInsufficientPermission: http.StatusForbidden,
	KindValidation:             http.StatusBadRequest,
	KindNotFound:               http.StatusNotFound,
	KindConflict:               http.StatusConflict,
	KindRateLimited:            http.StatusTooManyRequests,
}

var kindNames = map[Kind]string{
	KindInternal:               "internal",
	KindUnauthenticated:        "unauthenticated",
	KindInsufficientPermission: "insufficient_permission",
	KindValidation:             "validation",
	KindNotFound:               "not_found",
	KindConflict:               "conflict",
	KindRateLimited:            "rate_limited",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "internal"
}

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	if s, ok := statusByKind[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a classified API error. Message is safe to show to clients;
// Err (optional) is the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthenticated reports a missing or invalid session.
func Unauthenticated(msg string) *Error {
	if msg == "" {
		msg = "Not authenticated"
	}
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// Forbidden reports a verified caller whose role is too low.
func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "Insufficient permission"
	}
	return &Error{Kind: KindInsufficientPermission, Message: msg}
}

// Validation reports malformed or disallowed input.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound reports a missing target document.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict reports a uniqueness or state conflict.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// RateLimited reports a throttled caller.
func RateLimited(msg string) *Error {
	return &Error{Kind: KindRateLimited, Message: msg}
}

// Internal wraps an unexpected failure. msg is what the client sees.
func Internal(msg string, err error) *Error {
	if msg == "" {
		msg = "Internal server error"
	}
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf classifies any error. *Error values report their own Kind.
// Plain errors fall back to the message markers older call sites relied on:
// "permission"/"Insufficient" -> InsufficientPermission,
// "authenticated" -> Unauthenticated, everything else Internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "permission"), strings.Contains(msg, "Insufficient"):
		return KindInsufficientPermission
	case strings.Contains(msg, "authenticated"):
		return KindUnauthenticated
	default:
		return KindInternal
	}
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	return KindOf(err).Status()
}

// Is reports whether err is classified as k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

type errorBody struct {
	Error string `json:"error"`
}

// Write renders err as {"error": "..."} with the mapped status code.
// Internal errors are logged with their cause and answered with a generic
// message.
func Write(w http.ResponseWriter, logger *zap.Logger, err error) {
	kind := KindOf(err)
	msg := "Internal server error"

	var ae *Error
	if errors.As(err, &ae) {
		msg = ae.Message
	} else if kind != KindInternal {
		msg = err.Error()
	}

	if kind == KindInternal && logger != nil {
		logger.Error("api request failed", zap.Error(err))
	}

	WriteJSON(w, kind.Status(), errorBody{Error: msg})
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
