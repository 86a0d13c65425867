package device

import (
	"errors"
	"fmt"
)

// Kind classifies a device call failure.
type Kind string

const (
	KindTimeout      Kind = "timeout"        // call exceeded the request timeout
	KindUnreachable  Kind = "unreachable"    // connection refused, DNS failure, reset
	KindUnauthorized Kind = "unauthorized"   // HTTP 401, bad auth token
	KindHTTP         Kind = "http_error"     // any other non-2xx status
	KindNoCachedData Kind = "no_cached_data" // read failed and no cached value exists
)

// Error is a failed device call. Code is set only for KindHTTP.
type Error struct {
	Kind  Kind
	Code  int
	cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "connection timeout"
	case KindUnreachable:
		return "device unreachable"
	case KindUnauthorized:
		return "unauthorized: invalid auth token"
	case KindHTTP:
		return fmt.Sprintf("device returned HTTP %d", e.Code)
	case KindNoCachedData:
		return "no cached data available"
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// IsKind reports whether err is a device Error of the given kind.
func IsKind(err error, k Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == k
}

func newError(k Kind, cause error) *Error {
	return &Error{Kind: k, cause: cause}
}

func newHTTPError(code int, cause error) *Error {
	return &Error{Kind: KindHTTP, Code: code, cause: cause}
}
