package snaptrade

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed call.
type ErrorKind int

const (
	// KindTransport covers connection failures, timeouts and cancellation.
	KindTransport ErrorKind = iota + 1
	// KindStatus is a non-2xx response. Body holds the payload verbatim.
	KindStatus
	// KindDecode is a 2xx response whose payload did not fit the result type.
	KindDecode
	// KindUnsupportedMethod is raised before any I/O for methods other than
	// GET, POST, PUT and DELETE.
	KindUnsupportedMethod
	// KindInvalidRequest is raised before any I/O when the request cannot be
	// signed or encoded.
	KindInvalidRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindUnsupportedMethod:
		return "unsupported_method"
	case KindInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// APIError is the error document SnapTrade returns with non-2xx responses.
type APIError struct {
	Detail     string `json:"detail"`
	Code       string `json:"code"`
	StatusCode int    `json:"status_code"`
}

// Error is returned by every failed call. Use errors.As to inspect it.
type Error struct {
	Kind ErrorKind
	Meta Meta
	// Body is the raw response payload, when one was received.
	Body []byte
	// API is Body decoded as an APIError, or nil if it has another shape.
	API *APIError
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("snaptrade: ")
	switch e.Kind {
	case KindStatus:
		fmt.Fprintf(&b, "API error (status %d %s)", e.Meta.Status, e.Meta.StatusText)
		if e.API != nil && e.API.Detail != "" {
			fmt.Fprintf(&b, ": %s", e.API.Detail)
			if e.API.Code != "" {
				fmt.Fprintf(&b, " (code %s)", e.API.Code)
			}
		}
	case KindDecode:
		fmt.Fprintf(&b, "failed to decode response (status %d)", e.Meta.Status)
	default:
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// StatusCode returns the HTTP status of a KindStatus or KindDecode error, or
// zero.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Meta.Status
	}
	return 0
}

// ParseErrorResponse decodes a SnapTrade error document. It returns nil when
// body carries neither a detail nor a code. Codes arrive as strings or numbers.
func ParseErrorResponse(body []byte) *APIError {
	var raw struct {
		Detail     json.RawMessage `json:"detail"`
		Code       json.RawMessage `json:"code"`
		StatusCode int             `json:"status_code"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}
	apiErr := &APIError{
		Detail:     rawText(raw.Detail),
		Code:       rawText(raw.Code),
		StatusCode: raw.StatusCode,
	}
	if apiErr.Detail == "" && apiErr.Code == "" {
		return nil
	}
	return apiErr
}

func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
