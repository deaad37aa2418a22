// Package bootstrap contains the code shared by the tcpclient
// and tcphost commands: flags, configuration, logging, name
// resolution and packet capture.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/ooni/tcpprobe/internal/capture"
	"github.com/ooni/tcpprobe/internal/config"
	"github.com/ooni/tcpprobe/internal/logx"
	"github.com/ooni/tcpprobe/internal/model"
	"github.com/ooni/tcpprobe/internal/netxlite"
	"github.com/spf13/pflag"
)

// Options contains the flags that do not map to a configuration key.
type Options struct {
	// ConfigFile is the human-JSON configuration file.
	ConfigFile string
}

// RegisterFlags registers the command line flags. The withClientFlags
// argument adds the flags that only make sense for the client.
func RegisterFlags(flags *pflag.FlagSet, options *Options, withClientFlags bool) {
	flags.StringVar(&options.ConfigFile, "config", "", "read configuration from the given human-JSON file")
	if withClientFlags {
		flags.String(config.KeyHost, "", "host to connect to (default: localhost)")
		flags.String(config.KeyDNS, "", "resolve the host using the DNS-over-UDP server at the given ip:port")
	}
	flags.String(config.KeyPort, "", "TCP port to use")
	flags.String(config.KeyNetwork, "", "network to use: tcp4, tcp6 or tcp (default: tcp4)")
	flags.String(config.KeyLogDir, "", "write per-channel log files into the given directory")
	flags.String(config.KeyJournalDir, "", "write per-channel journals into the given directory")
	flags.String(config.KeyPcap, "", "capture the probe's segments into the given pcap file")
	flags.String(config.KeyPcapIface, "", "interface to capture from (default: any)")
	flags.BoolP(config.KeyVerbose, "v", false, "increase verbosity level")
}

// Session contains the state shared by the command's components.
type Session struct {
	// Config is the configuration.
	Config config.Provider

	// Handler is the log handler.
	Handler *logx.Handler

	// Loggers creates the log channels.
	Loggers *logx.Factory

	// Network is the network to use ("tcp4", "tcp6" or "tcp").
	Network string
}

// ErrInvalidNetwork indicates that the network is not one of tcp4, tcp6 or tcp.
var ErrInvalidNetwork = errors.New("invalid network")

// New loads the configuration and creates the [Session]. As a side
// effect, it also configures the apex/log default logger.
func New(flags *pflag.FlagSet, options *Options) (*Session, error) {
	provider, err := config.Load(flags, options.ConfigFile)
	if err != nil {
		return nil, err
	}
	network := config.String(provider, config.KeyNetwork)
	switch network {
	case "tcp4", "tcp6", "tcp":
	default:
		return nil, fmt.Errorf("config: %s: %w: %q", config.KeyNetwork, ErrInvalidNetwork, network)
	}
	verbose, err := config.Bool(provider, config.KeyVerbose)
	if err != nil {
		return nil, err
	}
	handler := logx.NewHandler(&logx.Config{
		Console:    os.Stdout,
		Verbose:    verbose,
		LogDir:     config.String(provider, config.KeyLogDir),
		JournalDir: config.String(provider, config.KeyJournalDir),
	})
	log.SetHandler(handler)
	log.SetLevel(log.DebugLevel)
	sess := &Session{
		Config:  provider,
		Handler: handler,
		Loggers: logx.NewFactory(handler),
		Network: network,
	}
	return sess, nil
}

// Close closes the log files.
func (sess *Session) Close() error {
	return sess.Handler.Close()
}

// NewDialer creates the dialer. When the dns key is set, we resolve
// names using such DNS server, otherwise we use the system resolver.
func (sess *Session) NewDialer() model.Dialer {
	logger := sess.Loggers.NewLogger(logx.DefaultChannel)
	if address := config.String(sess.Config, config.KeyDNS); address != "" {
		reso := netxlite.NewResolverUDP(logger, address, sess.Network)
		return netxlite.NewDialerWithResolver(logger, reso)
	}
	return netxlite.NewDialerWithSystemResolver(logger)
}

// NewTCPListener creates the TCP listener.
func (sess *Session) NewTCPListener() model.TCPListener {
	return netxlite.NewTCPListener()
}

// MaybeStartCapture starts capturing the segments of port when the pcap
// key is set. The returned function stops the capture and is never nil.
func (sess *Session) MaybeStartCapture(ctx context.Context, port uint16, remoteOwnsPort bool) (func(), error) {
	output := config.String(sess.Config, config.KeyPcap)
	if output == "" {
		return func() {}, nil
	}
	c, err := capture.Start(ctx, &capture.Config{
		Interface:      config.String(sess.Config, config.KeyPcapIface),
		OutputFile:     output,
		Port:           port,
		RemoteOwnsPort: remoteOwnsPort,
	}, sess.Loggers)
	if err != nil {
		return nil, err
	}
	log.Infof("capture: writing %s segments into %s", capture.BPFFilter(port), output)
	return func() {
		if err := c.Stop(); err != nil {
			log.Warnf("capture: %s", err.Error())
		}
	}, nil
}
