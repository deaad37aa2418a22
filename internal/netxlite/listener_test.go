package netxlite

import (
	"errors"
	"net"
	"testing"
)

func TestTCPListenerStdlib(t *testing.T) {
	t.Run("on success", func(t *testing.T) {
		listener, err := NewTCPListener().ListenTCP("tcp4", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
		if err != nil {
			t.Fatal(err)
		}
		defer listener.Close()
		if listener.Addr().(*net.TCPAddr).Port == 0 {
			t.Fatal("expected an ephemeral port")
		}
	})

	t.Run("on failure", func(t *testing.T) {
		first, err := NewTCPListener().ListenTCP("tcp4", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
		if err != nil {
			t.Fatal(err)
		}
		defer first.Close()
		second, err := NewTCPListener().ListenTCP("tcp4", first.Addr().(*net.TCPAddr))
		var ew *ErrWrapper
		if !errors.As(err, &ew) || ew.Operation != ListenOperation {
			t.Fatal("not the error we expected", err)
		}
		if second != nil {
			t.Fatal("expected nil listener")
		}
	})
}
