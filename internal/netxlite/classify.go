package netxlite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
)

// Failure strings returned by the classifiers.
const (
	FailureCanceled                = "operation_canceled"
	FailureConnectionAborted       = "connection_aborted"
	FailureConnectionAlreadyClosed = "connection_already_closed"
	FailureConnectionRefused       = "connection_refused"
	FailureConnectionReset         = "connection_reset"
	FailureDNSNXDOMAINError        = "dns_nxdomain_error"
	FailureDNSNoAnswer             = "dns_no_answer"
	FailureDNSServerMisbehaving    = "dns_server_misbehaving"
	FailureEOFError                = "eof_error"
	FailureGenericTimeoutError     = "generic_timeout_error"
	FailureHostUnreachable         = "host_unreachable"
	FailureInterrupted             = "interrupted"
	FailureNetworkUnreachable      = "network_unreachable"
	FailurePipeError               = "broken_pipe"
)

// ClassifyGenericError maps an error occurred during an operation
// to a failure string. You usually use it when mapping I/O errors.
//
// If the input error is an *ErrWrapper we don't perform
// the classification again and we return its Failure.
//
// Note that context.Canceled maps to FailureCanceled, which is the
// expected outcome of a shutdown, while the EINTR system error maps to
// FailureInterrupted, which the server reports as an interruption.
//
// If everything else fails, this classifier returns a string
// like "unknown_failure: XXX".
func ClassifyGenericError(err error) string {
	var errwrapper *ErrWrapper
	if errors.As(err, &errwrapper) {
		return errwrapper.Error() // we've already wrapped it
	}

	// Classify system errors first. We could use strings for many
	// of them on Unix, but this would fail on Windows.
	if failure := classifySyscallError(err); failure != "" {
		return failure
	}

	if errors.Is(err, context.Canceled) {
		return FailureCanceled
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureGenericTimeoutError
	}

	if errors.Is(err, io.EOF) {
		return FailureEOFError
	}

	if failure := classifyWithStringSuffix(err); failure != "" {
		return failure
	}

	return fmt.Sprintf("unknown_failure: %s", err.Error())
}

// classifySyscallError returns the failure corresponding to a
// system error or an empty string if err is not a system error.
func classifySyscallError(err error) string {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return ""
	}
	switch errno {
	case EINTR:
		return FailureInterrupted
	case ECONNREFUSED:
		return FailureConnectionRefused
	case ECONNRESET:
		return FailureConnectionReset
	case ECONNABORTED:
		return FailureConnectionAborted
	case EHOSTUNREACH:
		return FailureHostUnreachable
	case ENETUNREACH:
		return FailureNetworkUnreachable
	case ETIMEDOUT:
		return FailureGenericTimeoutError
	case EPIPE:
		return FailurePipeError
	default:
		return ""
	}
}

// classifyWithStringSuffix is a subset of ClassifyGenericError that
// performs classification by looking at error suffixes. This function
// will return an empty string if it cannot classify the error.
func classifyWithStringSuffix(err error) string {
	s := err.Error()
	if strings.HasSuffix(s, "operation was canceled") {
		return FailureCanceled
	}
	if strings.HasSuffix(s, "EOF") {
		return FailureEOFError
	}
	if strings.HasSuffix(s, "i/o timeout") {
		return FailureGenericTimeoutError
	}
	if strings.HasSuffix(s, "no such host") {
		return FailureDNSNXDOMAINError
	}
	if strings.HasSuffix(s, "use of closed network connection") {
		return FailureConnectionAlreadyClosed
	}
	return "" // not found
}

// classifyResolverError maps DNS resolution errors to failure strings,
// falling back to ClassifyGenericError.
func classifyResolverError(err error) string {
	var errwrapper *ErrWrapper
	if errors.As(err, &errwrapper) {
		return errwrapper.Error() // we've already wrapped it
	}
	if errors.Is(err, ErrOODNSNoSuchHost) {
		return FailureDNSNXDOMAINError
	}
	if errors.Is(err, ErrOODNSNoAnswer) {
		return FailureDNSNoAnswer
	}
	if errors.Is(err, ErrOODNSMisbehaving) {
		return FailureDNSServerMisbehaving
	}
	return ClassifyGenericError(err)
}

// IsCanceled returns whether err is the outcome of a canceled context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || failureIs(err, FailureCanceled)
}

// IsInterrupted returns whether err is an interrupted system call.
func IsInterrupted(err error) bool {
	return failureIs(err, FailureInterrupted) || classifySyscallError(err) == FailureInterrupted
}

// IsEOF returns whether err means the peer performed an orderly close.
func IsEOF(err error) bool {
	return errors.Is(err, io.EOF) || failureIs(err, FailureEOFError)
}

func failureIs(err error, failure string) bool {
	var errwrapper *ErrWrapper
	return errors.As(err, &errwrapper) && errwrapper.Failure == failure
}

// ErrnoCode returns the numeric system error code wrapped by err, if any.
func ErrnoCode(err error) (int, bool) {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return 0, false
	}
	return int(errno), true
}
