package netxlite

import (
	"net"

	"github.com/ooni/tcpprobe/internal/model"
)

// TCPListenerStdlib implements [model.TCPListener] using the standard library.
type TCPListenerStdlib struct{}

var _ model.TCPListener = &TCPListenerStdlib{}

// ListenTCP implements model.TCPListener.
func (*TCPListenerStdlib) ListenTCP(network string, addr *net.TCPAddr) (net.Listener, error) {
	listener, err := net.ListenTCP(network, addr)
	if err != nil {
		return nil, NewErrWrapper(ClassifyGenericError, ListenOperation, err)
	}
	return listener, nil
}

// NewTCPListener returns the default [model.TCPListener].
func NewTCPListener() model.TCPListener {
	return &TCPListenerStdlib{}
}
