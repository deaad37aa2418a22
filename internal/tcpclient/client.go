// Package tcpclient implements the client side of the probe.
//
// The client repeatedly connects to the configured endpoint, sends a
// random payload, resends the same payload twice after fixed delays,
// and disconnects. The receiving side can thus observe connection
// setup, duplicate data and teardown under controlled timing.
package tcpclient

import (
	"context"
	"net"
	"time"

	"github.com/ooni/tcpprobe/internal/endpoint"
	"github.com/ooni/tcpprobe/internal/logx"
	"github.com/ooni/tcpprobe/internal/model"
	"github.com/ooni/tcpprobe/internal/netxlite"
	"github.com/ooni/tcpprobe/internal/randx"
)

// Config contains the client delays.
type Config struct {
	// ConnectDelay is the delay between connect and the first send.
	ConnectDelay time.Duration

	// RetransmitDelay is the delay before each retransmission.
	RetransmitDelay time.Duration

	// Retransmissions is the number of retransmissions.
	Retransmissions int

	// LingerDelay is the delay between the last retransmission and
	// the moment in which we close the connection.
	LingerDelay time.Duration

	// CooldownDelay is the delay between closing the connection and
	// logging the end of the session.
	CooldownDelay time.Duration

	// CycleDelay is the delay between two sessions.
	CycleDelay time.Duration
}

// DefaultRetransmissions is the default number of retransmissions.
const DefaultRetransmissions = 2

// DefaultConfig returns the default [Config].
func DefaultConfig() Config {
	return Config{
		ConnectDelay:    time.Second,
		RetransmitDelay: 10 * time.Second,
		Retransmissions: DefaultRetransmissions,
		LingerDelay:     10 * time.Second,
		CooldownDelay:   time.Second,
		CycleDelay:      time.Second,
	}
}

// Client is the probe client. Construct using [New].
type Client struct {
	// Config contains the delays.
	Config Config

	// Dialer is the dialer we use.
	Dialer model.Dialer

	// Endpoint is the endpoint to connect to.
	Endpoint endpoint.Endpoint

	// Loggers creates the log channels.
	Loggers model.LoggerFactory

	// Network is the network to use ("tcp4", "tcp6" or "tcp").
	Network string

	// Payloads generates the payloads.
	Payloads *randx.PayloadSource
}

// New creates a new [Client] with [DefaultConfig].
func New(epnt endpoint.Endpoint, network string, dialer model.Dialer, loggers model.LoggerFactory) *Client {
	return &Client{
		Config:   DefaultConfig(),
		Dialer:   dialer,
		Endpoint: epnt,
		Loggers:  model.ValidLoggerFactoryOrDefault(loggers),
		Network:  network,
		Payloads: randx.NewPayloadSource(),
	}
}

// Run runs sessions until ctx is done, in which case it returns nil. Any
// other error interrupts the loop and is returned to the caller.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.RunOnce(ctx); err != nil {
			if netxlite.IsCanceled(err) {
				return nil
			}
			return err
		}
		if err := netxlite.SleepContext(ctx, c.Config.CycleDelay); err != nil {
			return nil
		}
	}
}

// RunOnce runs a single session. When ctx is done, it returns an
// error for which [netxlite.IsCanceled] is true.
func (c *Client) RunOnce(ctx context.Context) error {
	conn, err := c.Dialer.DialContext(ctx, c.Network, c.Endpoint.String())
	if err != nil {
		return err
	}
	defer conn.Close()

	host, port := splitAddr(conn.LocalAddr())
	logger := c.Loggers.NewLogger(host)
	logger.Info(logx.Banner)
	logger.Infof("%s> Connect to %s", port, c.Endpoint)
	if err := netxlite.SleepContext(ctx, c.Config.ConnectDelay); err != nil {
		return err
	}

	payload := c.Payloads.Payload()
	hexdump := logx.HexDump(payload)
	if err := netxlite.WriteContext(ctx, conn, payload); err != nil {
		return err
	}
	logger.Infof("%s> %d bytes sent: %s", port, len(payload), hexdump)

	for n := 1; n <= c.Config.Retransmissions; n++ {
		if err := netxlite.SleepContext(ctx, c.Config.RetransmitDelay); err != nil {
			return err
		}
		if err := netxlite.WriteContext(ctx, conn, payload); err != nil {
			return err
		}
		logger.Infof("%s> [Retrans %d] %d bytes sent: %s", port, n, len(payload), hexdump)
	}

	if err := netxlite.SleepContext(ctx, c.Config.LingerDelay); err != nil {
		return err
	}
	if err := conn.Close(); err != nil {
		return netxlite.NewTopLevelGenericErrWrapper(netxlite.CloseOperation, err)
	}
	logger.Infof("%s> Disconnected", port)
	if err := netxlite.SleepContext(ctx, c.Config.CooldownDelay); err != nil {
		return err
	}
	logger.Info(logx.Banner)
	return nil
}

// splitAddr returns the host and the port of addr.
func splitAddr(addr net.Addr) (string, string) {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String(), "0"
	}
	return host, port
}
