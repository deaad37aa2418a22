//go:build unix

package netxlite

import "golang.org/x/sys/unix"

const (
	EINTR        = unix.EINTR
	ECONNREFUSED = unix.ECONNREFUSED
	ECONNRESET   = unix.ECONNRESET
	ECONNABORTED = unix.ECONNABORTED
	EHOSTUNREACH = unix.EHOSTUNREACH
	ENETUNREACH  = unix.ENETUNREACH
	ETIMEDOUT    = unix.ETIMEDOUT
	EPIPE        = unix.EPIPE
)
