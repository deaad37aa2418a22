package testingx

import (
	"net"
	"testing"
)

// MustListenLoopback creates a TCP listener bound to an ephemeral port of
// 127.0.0.1 and closes it when the test completes.
func MustListenLoopback(t *testing.T) net.Listener {
	listener, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		listener.Close()
	})
	return listener
}

// ResetConn closes conn with SO_LINGER set to zero, so that the peer
// receives a RST segment rather than a FIN segment.
func ResetConn(conn net.Conn) error {
	type connLingerSetter interface {
		SetLinger(sec int) error
	}
	if setter, good := conn.(connLingerSetter); good {
		if err := setter.SetLinger(0); err != nil {
			conn.Close()
			return err
		}
	}
	return conn.Close()
}
