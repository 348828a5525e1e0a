package httputil

import (
	"encoding/json"
	"net/http"
	"time"
)

// Kind is a stable machine-readable error category exposed to clients.
type Kind string

const (
	KindValidation       Kind = "VALIDATION_ERROR"
	KindAuthentication   Kind = "AUTHENTICATION_ERROR"
	KindNotFound         Kind = "NOT_FOUND_ERROR"
	KindMethodNotAllowed Kind = "METHOD_NOT_ALLOWED"
	KindRateLimit        Kind = "RATE_LIMIT_ERROR"
	KindConfig           Kind = "CONFIG_ERROR"
	KindInternal         Kind = "INTERNAL_ERROR"
	KindService          Kind = "SERVICE_ERROR"
)

// StatusCode maps an error kind to its fixed HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure carried as a value from validators and
// handlers up to the HTTP boundary. Detail is safe to return to clients;
// Err holds the underlying cause for server-side logs only.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Detail + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with a client-safe detail string.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap attaches an underlying cause that is logged but never returned to clients.
func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// ErrorEnvelope is the uniform error response body.
type ErrorEnvelope struct {
	Detail    string `json:"detail"`
	ErrorKind Kind   `json:"error_kind"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// WriteKind writes the uniform error envelope for the given kind and detail.
func WriteKind(w http.ResponseWriter, requestID string, kind Kind, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kind.StatusCode())
	json.NewEncoder(w).Encode(ErrorEnvelope{
		Detail:    detail,
		ErrorKind: kind,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	})
}

// WriteError writes err as an error envelope. Classified *Error values keep
// their kind and detail; anything else becomes a generic INTERNAL_ERROR so
// internal failure detail never reaches the client.
func WriteError(w http.ResponseWriter, requestID string, err error) {
	if apiErr, ok := err.(*Error); ok {
		WriteKind(w, requestID, apiErr.Kind, apiErr.Detail)
		return
	}
	WriteKind(w, requestID, KindInternal, "An unexpected error occurred")
}

// WriteJSON writes a success response body.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
