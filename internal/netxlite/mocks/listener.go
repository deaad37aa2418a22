package mocks

import (
	"net"

	"github.com/ooni/tcpprobe/internal/model"
)

// Listener allows mocking a net.Listener.
type Listener struct {
	// Accept allows mocking Accept.
	MockAccept func() (net.Conn, error)

	// Close allows mocking Close.
	MockClose func() error

	// Addr allows mocking Addr.
	MockAddr func() net.Addr
}

var _ net.Listener = &Listener{}

// Accept implements net.Listener.Accept
func (li *Listener) Accept() (net.Conn, error) {
	return li.MockAccept()
}

// Close implements net.Listener.Closer.
func (li *Listener) Close() error {
	return li.MockClose()
}

// Addr implements net.Listener.Addr
func (li *Listener) Addr() net.Addr {
	return li.MockAddr()
}

// TCPListener allows mocking a [model.TCPListener].
type TCPListener struct {
	MockListenTCP func(network string, addr *net.TCPAddr) (net.Listener, error)
}

var _ model.TCPListener = &TCPListener{}

// ListenTCP calls MockListenTCP.
func (tl *TCPListener) ListenTCP(network string, addr *net.TCPAddr) (net.Listener, error) {
	return tl.MockListenTCP(network, addr)
}
