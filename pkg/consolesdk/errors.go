package consolesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ============================================================================
// Error Kinds
// ============================================================================

// Kind classifies every failure the Client can return.
type Kind int

const (
	// KindApplication means the backend was reached and rejected the request
	// with a non-success envelope. The message is backend-supplied.
	KindApplication Kind = iota + 1

	// KindSessionExpired means the backend rejected the credential (HTTP 401).
	// The stored token has already been cleared when this is returned.
	KindSessionExpired

	// KindTransport means the backend answered with a non-2xx status other than 401.
	KindTransport

	// KindNetwork means no HTTP response was received at all.
	KindNetwork

	// KindMalformed means a success envelope was missing fields the caller requires.
	KindMalformed
)

// String returns the label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindSessionExpired:
		return "session_expired"
	case KindTransport:
		return "transport"
	case KindNetwork:
		return "network"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ============================================================================
// Sentinel Errors
// ============================================================================

var (
	// ErrSessionExpired is wrapped by every KindSessionExpired error.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrNetworkUnreachable is wrapped by every KindNetwork error.
	ErrNetworkUnreachable = errors.New("network unreachable")

	// ErrMalformedResponse is wrapped by every KindMalformed error.
	ErrMalformedResponse = errors.New("malformed response")
)

const (
	defaultSuccessMessage = "success"
	defaultFailureMessage = "request failed"
)

// ============================================================================
// Error
// ============================================================================

// Error is the classified failure returned by Client.Call and every service
// method built on it. Message is intended for direct display to the operator.
type Error struct {
	Kind Kind

	// StatusCode is the HTTP status of the response, zero when none was received.
	StatusCode int

	// Code is the envelope code reported by the backend, if any.
	Code int

	// Message is the human-readable failure reason.
	Message string

	// Body is the raw response body, kept for diagnostics.
	Body []byte

	// Err is the underlying cause (a sentinel or a transport error).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel or transport cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or zero when err was not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newMalformedError(format string, args ...any) *Error {
	return &Error{
		Kind:    KindMalformed,
		Message: fmt.Sprintf("%s: %s", ErrMalformedResponse, fmt.Sprintf(format, args...)),
		Err:     ErrMalformedResponse,
	}
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// transportError builds a KindTransport error for a non-2xx, non-401 response.
// The message is taken from the body in this order: message, msg, detail
// (string), detail.message. FastAPI wraps HTTPException payloads in "detail".
func transportError(resp *http.Response, body []byte) *Error {
	e := &Error{
		Kind:       KindTransport,
		StatusCode: resp.StatusCode,
		Body:       body,
		Message:    fmt.Sprintf("%s with status %d", defaultFailureMessage, resp.StatusCode),
	}

	if msg, code := bodyMessage(body); msg != "" {
		e.Message = msg
		e.Code = code
	}

	return e
}

// bodyMessage extracts the backend-supplied message and code from an error body.
func bodyMessage(body []byte) (string, int) {
	var payload struct {
		Code    *int            `json:"code"`
		Message string          `json:"message"`
		Msg     string          `json:"msg"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", 0
	}

	code := 0
	if payload.Code != nil {
		code = *payload.Code
	}

	if msg := firstNonEmpty(payload.Message, payload.Msg); msg != "" {
		return msg, code
	}

	if len(payload.Detail) == 0 {
		return "", code
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		return strings.TrimSpace(detail), code
	}

	var nested struct {
		Code    *int   `json:"code"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &nested); err == nil {
		if nested.Code != nil {
			code = *nested.Code
		}
		return firstNonEmpty(nested.Message, nested.Msg), code
	}

	return "", code
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
