// Package transport implements the single choke point for every request to
// the remote accountability API: read-through caching, write invalidation,
// bearer injection, bounded rate-limit retry, and uniform failure
// classification.
//
// This file defines the failure taxonomy. Callers branch on a typed Kind
// rather than raw status codes, so exhaustiveness is compiler-checkable and
// no call site re-implements the status switch.
package transport

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request into the taxonomy surfaced to callers.
type Kind int

const (
	// KindUnreachable means no response was received: connection failure,
	// DNS error, or the per-request timeout elapsing.
	KindUnreachable Kind = iota
	// KindUnauthenticated maps HTTP 401. Handled centrally (session clear +
	// re-authentication); call sites receive it but need not re-display it.
	KindUnauthenticated
	// KindForbidden maps HTTP 403.
	KindForbidden
	// KindNotFound maps HTTP 404.
	KindNotFound
	// KindRateLimited maps HTTP 429 after the single automatic retry has
	// also been rejected.
	KindRateLimited
	// KindServerError maps HTTP 5xx.
	KindServerError
	// KindUnknown maps any other non-2xx status; the server-provided
	// message is attached.
	KindUnknown
)

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	case KindUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// RequestDescriptor identifies the logical request a failure belongs to.
// It is attached to every classified error for diagnostics and carried in
// logs and notifications.
type RequestDescriptor struct {
	Method    string
	Path      string
	Query     string
	RequestID string
}

// String renders the descriptor as "METHOD path?query (request_id)".
func (d RequestDescriptor) String() string {
	s := d.Method + " " + d.Path
	if d.Query != "" {
		s += "?" + d.Query
	}
	if d.RequestID != "" {
		s += " (" + d.RequestID + ")"
	}
	return s
}

// Error is the classified failure returned by the client. Status is zero for
// KindUnreachable; Message holds the server-provided detail when one exists.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Request RequestDescriptor
	// Err is the underlying transport error, if any (KindUnreachable).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Request, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Request)
}

// Unwrap exposes the underlying transport error for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification from err. ok is false when err is not
// a transport error.
func KindOf(err error) (Kind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a transport error of the given kind.
func IsKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}
