package api

import "fmt"

// Kind classifies a request failure
type Kind int

const (
	// KindNetwork means the request never completed (DNS, refused, reset)
	KindNetwork Kind = iota
	// KindTimeout means the request exceeded the configured deadline
	KindTimeout
	// KindHTTP means the backend answered with a non-2xx status
	KindHTTP
)

// Error is the failure shape returned by every Client call. Detail
// carries the backend's structured message verbatim when one was sent.
type Error struct {
	Kind   Kind
	Status int
	Detail string
	cause  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("request timed out: %v", e.cause)
	case KindNetwork:
		return fmt.Sprintf("request failed: %v", e.cause)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
		}
		return fmt.Sprintf("server returned %d", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Detail extracts the backend detail message from err, if any
func Detail(err error) string {
	if apiErr, ok := err.(*Error); ok {
		return apiErr.Detail
	}
	return ""
}

// IsTimeout reports whether err is a deadline failure
func IsTimeout(err error) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.Kind == KindTimeout
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	if apiErr, ok := err.(*Error); ok {
		return apiErr.Status
	}
	return 0
}
