package optimistic

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed mutation for logging and metrics.
type ErrorKind string

const (
	// KindRejected: the server answered with a non-2xx status.
	KindRejected ErrorKind = "rejected"
	// KindTransport: no usable response (network error, cancellation, panic).
	KindTransport ErrorKind = "transport"
)

// StatusError is implemented by errors that carry the HTTP status of a
// response.
type StatusError interface {
	error
	HTTPStatus() int
}

func Classify(err error) ErrorKind {
	var se StatusError
	if errors.As(err, &se) && se.HTTPStatus() > 0 {
		return KindRejected
	}
	return KindTransport
}

// PanicError wraps a value recovered from a panicking mutation call.
type PanicError struct {
	Action string
	Value  any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: panic: %v", e.Action, e.Value)
}
