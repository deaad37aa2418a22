package model

//
// Network extensions
//

import (
	"context"
	"net"
)

// Dialer establishes network connections.
type Dialer interface {
	// DialContext behaves like net.Dialer.DialContext.
	DialContext(ctx context.Context, network, address string) (net.Conn, error)

	// CloseIdleConnections closes idle connections, if any.
	CloseIdleConnections()
}

// Resolver performs domain name resolutions.
type Resolver interface {
	// LookupHost behaves like net.Resolver.LookupHost.
	LookupHost(ctx context.Context, hostname string) (addrs []string, err error)

	// Network returns the resolver type. It should be one of:
	//
	// - system: the system resolver;
	//
	// - udp: a custom DNS-over-UDP resolver.
	Network() string

	// Address returns the resolver address (e.g., 8.8.8.8:53).
	Address() string

	// CloseIdleConnections closes idle connections, if any.
	CloseIdleConnections()
}

// TCPListener creates listening TCP sockets.
type TCPListener interface {
	// ListenTCP behaves like net.ListenTCP.
	ListenTCP(network string, addr *net.TCPAddr) (net.Listener, error)
}
