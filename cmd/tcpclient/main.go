// Command tcpclient repeatedly connects to a TCP endpoint, sends a random
// payload, retransmits it twice, and disconnects.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/ooni/tcpprobe/internal/bootstrap"
	"github.com/ooni/tcpprobe/internal/endpoint"
	"github.com/ooni/tcpprobe/internal/tcpclient"
	"github.com/ooni/tcpprobe/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	var options bootstrap.Options
	cmd := &cobra.Command{
		Use:          "tcpclient",
		Short:        "Connects to a TCP endpoint and sends a payload with two retransmissions",
		Args:         cobra.NoArgs,
		Version:      version.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd.Flags(), &options)
		},
	}
	cmd.SetVersionTemplate("{{ .Version }}\n")
	bootstrap.RegisterFlags(cmd.Flags(), &options, true)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run runs the client until ctx is done or a fault occurs.
func run(ctx context.Context, flags *pflag.FlagSet, options *bootstrap.Options) error {
	sess, err := bootstrap.New(flags, options)
	if err != nil {
		return err
	}
	defer sess.Close()

	epnt, err := endpoint.FromConfig(sess.Config)
	if err != nil {
		log.WithError(err).Error("tcpclient: invalid configuration")
		return err
	}

	stopCapture, err := sess.MaybeStartCapture(ctx, epnt.Port(), true)
	if err != nil {
		log.WithError(err).Error("tcpclient: cannot start packet capture")
		return err
	}
	defer stopCapture()

	client := tcpclient.New(epnt, sess.Network, sess.NewDialer(), sess.Loggers)
	log.Infof("tcpclient %s: connecting to %s over %s", version.Version, epnt, sess.Network)
	if err := client.Run(ctx); err != nil {
		log.WithError(err).Error("tcpclient: session failed")
		return err
	}
	log.Info("tcpclient: interrupted by the user")
	return nil
}
