package netxlite

import (
	"encoding/json"
	"errors"
)

// ErrWrapper is our error wrapper for Go errors. The key objective of
// this structure is to properly set Failure, which is also returned by
// the Error() method, to be one of the FailureXXX strings.
type ErrWrapper struct {
	// Failure is the failure string.
	//
	// This is either one of the FailureXXX strings or any other
	// string like `unknown_failure: ...`. The latter represents an
	// error that we have not yet mapped to a failure.
	Failure string

	// Operation is the operation that failed. It is one of the
	// XXXOperation constants (e.g., ConnectOperation).
	Operation string

	// WrappedErr is the error that we're wrapping.
	WrappedErr error
}

// Error returns the failure string for this error.
func (e *ErrWrapper) Error() string {
	return e.Failure
}

// Unwrap allows to access the underlying error.
func (e *ErrWrapper) Unwrap() error {
	return e.WrappedErr
}

// MarshalJSON converts an ErrWrapper to a JSON value.
func (e *ErrWrapper) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Failure)
}

// Detail returns a human readable description of the error including
// the operation and the underlying error string.
func (e *ErrWrapper) Detail() string {
	return e.Operation + ": " + e.Failure + " (" + e.WrappedErr.Error() + ")"
}

// classifier is the type of the function that maps a Go error
// to a failure string.
type classifier func(err error) string

// NewErrWrapper creates a new ErrWrapper using the given
// classifier, operation name, and underlying error.
//
// This function panics if classifier is nil, or operation
// is the empty string or error is nil.
//
// If the err argument has already been classified, the returned
// error wrapper will use the same classification string and
// will keep the innermost operation.
func NewErrWrapper(c classifier, op string, err error) *ErrWrapper {
	var wrapper *ErrWrapper
	if errors.As(err, &wrapper) {
		return &ErrWrapper{
			Failure:    wrapper.Failure,
			Operation:  wrapper.Operation,
			WrappedErr: err,
		}
	}
	if c == nil {
		panic("nil classifier")
	}
	if op == "" {
		panic("empty op")
	}
	if err == nil {
		panic("nil err")
	}
	return &ErrWrapper{
		Failure:    c(err),
		Operation:  op,
		WrappedErr: err,
	}
}

// MaybeNewErrWrapper is like NewErrWrapper except that this
// function won't panic if passed a nil error.
func MaybeNewErrWrapper(c classifier, op string, err error) error {
	if err != nil {
		return NewErrWrapper(c, op, err)
	}
	return nil
}

// NewTopLevelGenericErrWrapper wraps an error occurring at top
// level using ClassifyGenericError as the classifier.
func NewTopLevelGenericErrWrapper(op string, err error) *ErrWrapper {
	return NewErrWrapper(ClassifyGenericError, op, err)
}

// Operations that may fail.
const (
	// AcceptOperation is the operation where we accept a conn.
	AcceptOperation = "accept"

	// CloseOperation is the operation where we close a socket.
	CloseOperation = "close"

	// ConnectOperation is the operation where we connect a socket.
	ConnectOperation = "connect"

	// ListenOperation is the operation where we create a listener.
	ListenOperation = "listen"

	// ReadOperation is the operation where we read from a socket.
	ReadOperation = "read"

	// ResolveOperation is the operation where we resolve a domain name.
	ResolveOperation = "resolve"

	// SleepOperation is the operation where we wait for some time.
	SleepOperation = "sleep"

	// WriteOperation is the operation where we write to a socket.
	WriteOperation = "write"
)
