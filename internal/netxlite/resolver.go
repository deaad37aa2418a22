package netxlite

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/miekg/dns"
	"github.com/ooni/tcpprobe/internal/model"
)

var (
	// ErrOODNSNoSuchHost means the DNS server returned NXDOMAIN.
	ErrOODNSNoSuchHost = errors.New("no such host")

	// ErrOODNSNoAnswer means the response does not contain any address.
	ErrOODNSNoAnswer = errors.New("no answer")

	// ErrOODNSMisbehaving means the DNS server returned an error code.
	ErrOODNSMisbehaving = errors.New("server misbehaving")
)

// NewResolverUDP creates a [model.Resolver] sending DNS-over-UDP queries to the
// server at address (e.g., 8.8.8.8:53). The network argument is the network we
// are going to dial ("tcp4", "tcp6" or "tcp") and selects the query types.
func NewResolverUDP(logger model.Logger, address, network string) model.Resolver {
	return &resolverLogger{
		Resolver: &resolverErrWrapper{
			Resolver: &resolverUDP{
				address: address,
				client:  &dns.Client{Net: "udp"},
				qtypes:  queryTypesForNetwork(network),
			},
		},
		Logger: logger,
	}
}

// queryTypesForNetwork maps a dial network to the DNS query types.
func queryTypesForNetwork(network string) []uint16 {
	switch network {
	case "tcp4":
		return []uint16{dns.TypeA}
	case "tcp6":
		return []uint16{dns.TypeAAAA}
	default:
		return []uint16{dns.TypeA, dns.TypeAAAA}
	}
}

// resolverUDP is a DNS-over-UDP resolver using miekg/dns.
type resolverUDP struct {
	address string
	client  *dns.Client
	qtypes  []uint16
}

var _ model.Resolver = &resolverUDP{}

// LookupHost implements model.Resolver.
func (r *resolverUDP) LookupHost(ctx context.Context, hostname string) ([]string, error) {
	var (
		addrs    []string
		firstErr error
	)
	for _, qtype := range r.qtypes {
		out, err := r.lookup(ctx, hostname, qtype)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		addrs = append(addrs, out...)
	}
	if len(addrs) <= 0 {
		if firstErr == nil {
			firstErr = ErrOODNSNoAnswer
		}
		return nil, firstErr
	}
	return addrs, nil
}

func (r *resolverUDP) lookup(ctx context.Context, hostname string, qtype uint16) ([]string, error) {
	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(hostname), qtype)
	query.RecursionDesired = true
	resp, _, err := r.client.ExchangeContext(ctx, query, r.address)
	if err != nil {
		return nil, err
	}
	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, ErrOODNSNoSuchHost
	default:
		return nil, ErrOODNSMisbehaving
	}
	var addrs []string
	for _, answer := range resp.Answer {
		switch rr := answer.(type) {
		case *dns.A:
			addrs = append(addrs, rr.A.String())
		case *dns.AAAA:
			addrs = append(addrs, rr.AAAA.String())
		}
	}
	if len(addrs) <= 0 {
		return nil, ErrOODNSNoAnswer
	}
	return addrs, nil
}

// Network implements model.Resolver.
func (r *resolverUDP) Network() string {
	return "udp"
}

// Address implements model.Resolver.
func (r *resolverUDP) Address() string {
	return r.address
}

// CloseIdleConnections implements model.Resolver.
func (r *resolverUDP) CloseIdleConnections() {
	// nothing
}

// NewResolverSystem creates a [model.Resolver] using the standard library.
func NewResolverSystem() model.Resolver {
	return &resolverErrWrapper{Resolver: &resolverSystem{}}
}

// resolverSystem is the system resolver.
type resolverSystem struct{}

var _ model.Resolver = &resolverSystem{}

// LookupHost implements model.Resolver.
func (r *resolverSystem) LookupHost(ctx context.Context, hostname string) ([]string, error) {
	return net.DefaultResolver.LookupHost(ctx, hostname)
}

// Network implements model.Resolver.
func (r *resolverSystem) Network() string {
	return "system"
}

// Address implements model.Resolver.
func (r *resolverSystem) Address() string {
	return ""
}

// CloseIdleConnections implements model.Resolver.
func (r *resolverSystem) CloseIdleConnections() {
	// nothing
}

// resolverLogger is a resolver that emits debug logs.
type resolverLogger struct {
	Resolver model.Resolver
	Logger   model.Logger
}

var _ model.Resolver = &resolverLogger{}

// LookupHost implements model.Resolver.
func (r *resolverLogger) LookupHost(ctx context.Context, hostname string) ([]string, error) {
	r.Logger.Debugf("resolve %s using %s/%s...", hostname, r.Network(), r.Address())
	start := time.Now()
	addrs, err := r.Resolver.LookupHost(ctx, hostname)
	elapsed := time.Since(start)
	if err != nil {
		r.Logger.Debugf("resolve %s using %s/%s... %s in %s",
			hostname, r.Network(), r.Address(), err, elapsed)
		return nil, err
	}
	r.Logger.Debugf("resolve %s using %s/%s... %+v in %s",
		hostname, r.Network(), r.Address(), addrs, elapsed)
	return addrs, nil
}

// Network implements model.Resolver.
func (r *resolverLogger) Network() string {
	return r.Resolver.Network()
}

// Address implements model.Resolver.
func (r *resolverLogger) Address() string {
	return r.Resolver.Address()
}

// CloseIdleConnections implements model.Resolver.
func (r *resolverLogger) CloseIdleConnections() {
	r.Resolver.CloseIdleConnections()
}

// resolverErrWrapper wraps errors with ErrWrapper.
type resolverErrWrapper struct {
	Resolver model.Resolver
}

var _ model.Resolver = &resolverErrWrapper{}

// LookupHost implements model.Resolver.
func (r *resolverErrWrapper) LookupHost(ctx context.Context, hostname string) ([]string, error) {
	addrs, err := r.Resolver.LookupHost(ctx, hostname)
	if err != nil {
		return nil, NewErrWrapper(classifyResolverError, ResolveOperation, err)
	}
	return addrs, nil
}

// Network implements model.Resolver.
func (r *resolverErrWrapper) Network() string {
	return r.Resolver.Network()
}

// Address implements model.Resolver.
func (r *resolverErrWrapper) Address() string {
	return r.Resolver.Address()
}

// CloseIdleConnections implements model.Resolver.
func (r *resolverErrWrapper) CloseIdleConnections() {
	r.Resolver.CloseIdleConnections()
}
