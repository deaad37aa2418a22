// Package endpoint turns the configured host and port into an [Endpoint].
package endpoint

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"github.com/ooni/tcpprobe/internal/config"
)

var (
	// ErrInvalidPort indicates that the port is not a decimal integer in [1, 65535].
	ErrInvalidPort = errors.New("invalid port")

	// ErrMissingPort indicates that the port is not configured.
	ErrMissingPort = errors.New("missing port")
)

// ConfigurationError is a fatal startup error caused by a bad
// configuration value.
type ConfigurationError struct {
	// Key is the configuration key.
	Key string

	// Value is the offending value.
	Value string

	// Reason is either ErrInvalidPort or ErrMissingPort.
	Reason error
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config: %s: %s", e.Key, e.Reason.Error())
	}
	return fmt.Sprintf("config: %s: %s: %q", e.Key, e.Reason.Error(), e.Value)
}

// Unwrap allows errors.Is to match the Reason.
func (e *ConfigurationError) Unwrap() error {
	return e.Reason
}

// Endpoint is a connectable (address-or-name, port) pair. The
// concrete types are [Addr] and [Name].
type Endpoint interface {
	// String returns host:port with IPv6 addresses in brackets.
	String() string

	// Port returns the port.
	Port() uint16

	isEndpoint()
}

// Addr is an [Endpoint] with a numeric IP address.
type Addr struct {
	AddrPort netip.AddrPort
}

var _ Endpoint = Addr{}

// String implements Endpoint.
func (a Addr) String() string {
	return a.AddrPort.String()
}

// Port implements Endpoint.
func (a Addr) Port() uint16 {
	return a.AddrPort.Port()
}

func (Addr) isEndpoint() {}

// Name is an [Endpoint] with a host name we resolve at connect time.
type Name struct {
	Host string
	port uint16
}

var _ Endpoint = Name{}

// NewName creates a [Name] endpoint.
func NewName(host string, port uint16) Name {
	return Name{Host: host, port: port}
}

// String implements Endpoint.
func (n Name) String() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(int(n.port)))
}

// Port implements Endpoint.
func (n Name) Port() uint16 {
	return n.port
}

func (Name) isEndpoint() {}

// ParsePort parses a decimal port in [1, 65535].
func ParsePort(value string) (uint16, error) {
	if value == "" {
		return 0, &ConfigurationError{Key: config.KeyPort, Reason: ErrMissingPort}
	}
	port, err := strconv.ParseUint(value, 10, 16)
	if err != nil || port == 0 {
		return 0, &ConfigurationError{Key: config.KeyPort, Value: value, Reason: ErrInvalidPort}
	}
	return uint16(port), nil
}

// New creates an [Endpoint] from host and port. When host is an IP
// address literal we return an [Addr], otherwise a [Name].
func New(host, port string) (Endpoint, error) {
	p, err := ParsePort(port)
	if err != nil {
		return nil, err
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return Addr{AddrPort: netip.AddrPortFrom(addr.Unmap(), p)}, nil
	}
	return NewName(host, p), nil
}

// FromConfig creates the client [Endpoint] from the host and port keys.
func FromConfig(provider config.Provider) (Endpoint, error) {
	host, found := provider.Lookup(config.KeyHost)
	if !found || host == "" {
		host = "localhost"
	}
	port, found := provider.Lookup(config.KeyPort)
	if !found {
		return nil, &ConfigurationError{Key: config.KeyPort, Reason: ErrMissingPort}
	}
	return New(host, port)
}

// ListenPortFromConfig returns the port the server should listen on.
func ListenPortFromConfig(provider config.Provider) (uint16, error) {
	port, found := provider.Lookup(config.KeyPort)
	if !found {
		return 0, &ConfigurationError{Key: config.KeyPort, Reason: ErrMissingPort}
	}
	return ParsePort(port)
}

// Host returns the host part of an [Endpoint].
func Host(epnt Endpoint) string {
	switch v := epnt.(type) {
	case Addr:
		return v.AddrPort.Addr().String()
	case Name:
		return v.Host
	default:
		return ""
	}
}
