// Package apierr converts raw transport and HTTP failures into a single
// normalized error type consumed by the UI layer. Errors are created at the
// transport boundary and never mutated or re-wrapped into a different kind.
package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
)

type Kind string

const (
	KindNetwork    Kind = "NETWORK"
	KindTimeout    Kind = "TIMEOUT"
	KindHTTP       Kind = "HTTP"
	KindValidation Kind = "VALIDATION"
	KindUnknown    Kind = "UNKNOWN"
)

const (
	NetworkErrorMessage = "Network error: Unable to reach backend server"
	TimeoutErrorMessage = "Request timed out. Please try again."
)

// FieldError is one field-level entry of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the normalized form of any transport-level failure.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Detail     string
	Fields     []FieldError
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind == KindHTTP || e.Kind == KindValidation || e.Kind == KindUnknown {
		if e.StatusCode > 0 {
			return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
		}
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// FromTransport normalizes a failure raised before any byte of the response
// was received. An explicit deadline cancellation maps to TIMEOUT; every
// other pre-response failure (connection refused, DNS, reset) maps to NETWORK.
func FromTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Kind:    KindTimeout,
			Message: TimeoutErrorMessage,
			Detail:  err.Error(),
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{
			Kind:    KindTimeout,
			Message: TimeoutErrorMessage,
			Detail:  err.Error(),
		}
	}
	return &Error{
		Kind:    KindNetwork,
		Message: NetworkErrorMessage,
		Detail:  err.Error(),
	}
}

// validationPayload matches the structured 422 body shape:
// {"detail": [{"loc": ["body","items",0,"qty"], "msg": "..."}]}
type validationPayload struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// FromResponse normalizes a non-2xx HTTP response.
//
// A JSON body with a structured validation array maps to VALIDATION with one
// field entry per element; a plain string detail/message field maps to HTTP
// carrying that string; any other shape maps to UNKNOWN carrying the raw
// status text.
func FromResponse(statusCode int, statusText string, body []byte) *Error {
	raw := strings.TrimSpace(string(body))

	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Detail) > 0 {
			var items []validationPayload
			if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
				fields := make([]FieldError, 0, len(items))
				for _, item := range items {
					msg := item.Msg
					if msg == "" {
						msg = "Validation error"
					}
					fields = append(fields, FieldError{
						Field:   joinLocation(item.Loc),
						Message: msg,
					})
				}
				return &Error{
					Kind:       KindValidation,
					StatusCode: statusCode,
					Message:    "Validation error: Please check your input",
					Detail:     raw,
					Fields:     fields,
				}
			}

			var detail string
			if err := json.Unmarshal(envelope.Detail, &detail); err == nil && detail != "" {
				return &Error{
					Kind:       KindHTTP,
					StatusCode: statusCode,
					Message:    detail,
					Detail:     raw,
				}
			}
		}
		if envelope.Message != "" {
			return &Error{
				Kind:       KindHTTP,
				StatusCode: statusCode,
				Message:    envelope.Message,
				Detail:     raw,
			}
		}
	}

	return &Error{
		Kind:       KindUnknown,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("Backend error: %s", statusText),
		Detail:     raw,
	}
}

// joinLocation renders a validation location path like
// ["body","items",0,"qty"] as "body.items.0.qty".
func joinLocation(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	parts := make([]string, 0, len(loc))
	for _, segment := range loc {
		switch v := segment.(type) {
		case string:
			parts = append(parts, v)
		case float64:
			parts = append(parts, fmt.Sprintf("%d", int(v)))
		default:
			parts = append(parts, fmt.Sprintf("%v", v))
		}
	}
	return strings.Join(parts, ".")
}
