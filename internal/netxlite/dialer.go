package netxlite

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/ooni/tcpprobe/internal/model"
)

// NewDialerWithResolver creates a dialer using the given resolver and logger.
//
// The returned dialer resolves domain names at every DialContext call, so
// the same name may map to a different address at every session.
func NewDialerWithResolver(logger model.Logger, resolver model.Resolver) model.Dialer {
	return &dialerErrWrapper{
		Dialer: &dialerLogger{
			Dialer: &dialerResolver{
				Dialer: &dialerLogger{
					Dialer:          &dialerSystem{},
					Logger:          logger,
					operationSuffix: "_address",
				},
				Resolver: resolver,
			},
			Logger: logger,
		},
	}
}

// NewDialerWithSystemResolver creates a dialer that delegates domain name
// resolution to the standard library at dial time.
func NewDialerWithSystemResolver(logger model.Logger) model.Dialer {
	return &dialerErrWrapper{
		Dialer: &dialerLogger{
			Dialer: &dialerSystem{},
			Logger: logger,
		},
	}
}

// underlyingDialer is the dialer we use by default.
//
// There is no Timeout: we want to observe the real connect behavior. We
// also disable keepalives because they generate traffic on otherwise idle
// connections and this traffic changes the NAT and firewalls timeouts
// we are trying to observe.
var underlyingDialer = &net.Dialer{
	KeepAlive: -1,
}

// dialerSystem dials using Go stdlib.
type dialerSystem struct{}

var _ model.Dialer = &dialerSystem{}

// DialContext implements model.Dialer.DialContext.
func (d *dialerSystem) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return underlyingDialer.DialContext(ctx, network, address)
}

// CloseIdleConnections implements model.Dialer.CloseIdleConnections.
func (d *dialerSystem) CloseIdleConnections() {
	// nothing
}

// dialerResolver is a dialer that uses the configured Resolver to resolver a
// domain name to IP addresses, and the configured Dialer to connect.
type dialerResolver struct {
	// Dialer is the underlying Dialer.
	Dialer model.Dialer

	// Resolver is the underlying Resolver.
	Resolver model.Resolver
}

var _ model.Dialer = &dialerResolver{}

// DialContext implements model.Dialer.DialContext.
func (d *dialerResolver) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	onlyhost, onlyport, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	addrs, err := d.lookupHost(ctx, onlyhost)
	if err != nil {
		return nil, err
	}
	var errorslist []error
	for _, addr := range addrs {
		target := net.JoinHostPort(addr, onlyport)
		conn, err := d.Dialer.DialContext(ctx, network, target)
		if err == nil {
			return conn, nil
		}
		errorslist = append(errorslist, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, reduceErrors(errorslist)
}

// lookupHost performs a domain name resolution.
func (d *dialerResolver) lookupHost(ctx context.Context, hostname string) ([]string, error) {
	if net.ParseIP(hostname) != nil {
		return []string{hostname}, nil
	}
	return d.Resolver.LookupHost(ctx, hostname)
}

// CloseIdleConnections implements model.Dialer.CloseIdleConnections.
func (d *dialerResolver) CloseIdleConnections() {
	d.Dialer.CloseIdleConnections()
	d.Resolver.CloseIdleConnections()
}

// reduceErrors returns the first error that is not a generic failure
// or the first error, if all of them are generic.
func reduceErrors(errorslist []error) error {
	if len(errorslist) == 0 {
		return errors.New("no addresses to dial")
	}
	for _, err := range errorslist {
		failure := ClassifyGenericError(err)
		if failure == FailureConnectionRefused || failure == FailureCanceled {
			return err
		}
	}
	return errorslist[0]
}

// dialerLogger is a Dialer with logging.
type dialerLogger struct {
	// Dialer is the underlying dialer.
	Dialer model.Dialer

	// Logger is the underlying logger.
	Logger model.Logger

	// operationSuffix is appended to the operation name.
	//
	// We use this suffix to distinguish the output from dialing
	// a domain name with the output from dialing its addresses.
	operationSuffix string
}

var _ model.Dialer = &dialerLogger{}

// DialContext implements model.Dialer.DialContext
func (d *dialerLogger) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.Logger.Debugf("dial%s %s/%s...", d.operationSuffix, address, network)
	start := time.Now()
	conn, err := d.Dialer.DialContext(ctx, network, address)
	elapsed := time.Since(start)
	if err != nil {
		d.Logger.Debugf("dial%s %s/%s... %s in %s", d.operationSuffix,
			address, network, err, elapsed)
		return nil, err
	}
	d.Logger.Debugf("dial%s %s/%s... ok in %s", d.operationSuffix,
		address, network, elapsed)
	return conn, nil
}

// CloseIdleConnections implements model.Dialer.CloseIdleConnections.
func (d *dialerLogger) CloseIdleConnections() {
	d.Dialer.CloseIdleConnections()
}

// dialerErrWrapper wraps errors with ErrWrapper.
type dialerErrWrapper struct {
	Dialer model.Dialer
}

var _ model.Dialer = &dialerErrWrapper{}

// DialContext implements model.Dialer.DialContext.
func (d *dialerErrWrapper) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, NewErrWrapper(ClassifyGenericError, ConnectOperation, err)
	}
	return conn, nil
}

// CloseIdleConnections implements model.Dialer.CloseIdleConnections.
func (d *dialerErrWrapper) CloseIdleConnections() {
	d.Dialer.CloseIdleConnections()
}
