package mocks

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestDialer(t *testing.T) {
	t.Run("DialContext", func(t *testing.T) {
		expected := errors.New("mocked error")
		d := &Dialer{
			MockDialContext: func(ctx context.Context, network, address string) (net.Conn, error) {
				return nil, expected
			},
		}
		conn, err := d.DialContext(context.Background(), "tcp", "8.8.8.8:53")
		if !errors.Is(err, expected) {
			t.Fatal("not the error we expected", err)
		}
		if conn != nil {
			t.Fatal("expected nil conn")
		}
	})

	t.Run("CloseIdleConnections", func(t *testing.T) {
		var called bool
		d := &Dialer{
			MockCloseIdleConnections: func() {
				called = true
			},
		}
		d.CloseIdleConnections()
		if !called {
			t.Fatal("not called")
		}
	})
}

func TestConn(t *testing.T) {
	expected := errors.New("mocked error")
	addr := &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 443}
	c := &Conn{
		MockRead: func(b []byte) (int, error) {
			return 0, expected
		},
		MockWrite: func(b []byte) (int, error) {
			return 0, expected
		},
		MockClose: func() error {
			return expected
		},
		MockLocalAddr: func() net.Addr {
			return addr
		},
		MockRemoteAddr: func() net.Addr {
			return addr
		},
		MockSetDeadline: func(t time.Time) error {
			return expected
		},
		MockSetReadDeadline: func(t time.Time) error {
			return expected
		},
		MockSetWriteDeadline: func(t time.Time) error {
			return expected
		},
	}
	if _, err := c.Read(nil); !errors.Is(err, expected) {
		t.Fatal("Read", err)
	}
	if _, err := c.Write(nil); !errors.Is(err, expected) {
		t.Fatal("Write", err)
	}
	if err := c.Close(); !errors.Is(err, expected) {
		t.Fatal("Close", err)
	}
	if c.LocalAddr() != addr || c.RemoteAddr() != addr {
		t.Fatal("unexpected addresses")
	}
	if err := c.SetDeadline(time.Now()); !errors.Is(err, expected) {
		t.Fatal("SetDeadline", err)
	}
	if err := c.SetReadDeadline(time.Now()); !errors.Is(err, expected) {
		t.Fatal("SetReadDeadline", err)
	}
	if err := c.SetWriteDeadline(time.Now()); !errors.Is(err, expected) {
		t.Fatal("SetWriteDeadline", err)
	}
}

func TestResolver(t *testing.T) {
	r := &Resolver{
		MockLookupHost: func(ctx context.Context, domain string) ([]string, error) {
			return []string{"8.8.8.8"}, nil
		},
		MockNetwork: func() string {
			return "udp"
		},
		MockAddress: func() string {
			return "8.8.8.8:53"
		},
		MockCloseIdleConnections: func() {},
	}
	addrs, err := r.LookupHost(context.Background(), "dns.google")
	if err != nil || len(addrs) != 1 || addrs[0] != "8.8.8.8" {
		t.Fatal("unexpected LookupHost result", addrs, err)
	}
	if r.Network() != "udp" || r.Address() != "8.8.8.8:53" {
		t.Fatal("unexpected network or address")
	}
	r.CloseIdleConnections()
}

func TestListener(t *testing.T) {
	expected := errors.New("mocked error")
	addr := &net.TCPAddr{IP: net.IPv4zero, Port: 9000}
	li := &Listener{
		MockAccept: func() (net.Conn, error) {
			return nil, expected
		},
		MockClose: func() error {
			return expected
		},
		MockAddr: func() net.Addr {
			return addr
		},
	}
	if _, err := li.Accept(); !errors.Is(err, expected) {
		t.Fatal("Accept", err)
	}
	if err := li.Close(); !errors.Is(err, expected) {
		t.Fatal("Close", err)
	}
	if li.Addr() != addr {
		t.Fatal("Addr")
	}
	tl := &TCPListener{
		MockListenTCP: func(network string, addr *net.TCPAddr) (net.Listener, error) {
			return li, nil
		},
	}
	if out, err := tl.ListenTCP("tcp", addr); err != nil || out != li {
		t.Fatal("ListenTCP", err)
	}
}
