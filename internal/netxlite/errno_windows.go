//go:build windows

package netxlite

import "golang.org/x/sys/windows"

const (
	EINTR        = windows.WSAEINTR
	ECONNREFUSED = windows.WSAECONNREFUSED
	ECONNRESET   = windows.WSAECONNRESET
	ECONNABORTED = windows.WSAECONNABORTED
	EHOSTUNREACH = windows.WSAEHOSTUNREACH
	ENETUNREACH  = windows.WSAENETUNREACH
	ETIMEDOUT    = windows.WSAETIMEDOUT
	EPIPE        = windows.ERROR_BROKEN_PIPE
)
