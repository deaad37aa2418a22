// Command tcphost accepts TCP connections and logs every byte range
// received until each peer disconnects.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/ooni/tcpprobe/internal/bootstrap"
	"github.com/ooni/tcpprobe/internal/endpoint"
	"github.com/ooni/tcpprobe/internal/tcpserver"
	"github.com/ooni/tcpprobe/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	var options bootstrap.Options
	cmd := &cobra.Command{
		Use:          "tcphost",
		Short:        "Accepts TCP connections and logs what each peer sends",
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
	bootstrap.RegisterFlags(cmd.Flags(), &options, false)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run runs the server until ctx is done.
func run(ctx context.Context, flags *pflag.FlagSet, options *bootstrap.Options) error {
	sess, err := bootstrap.New(flags, options)
	if err != nil {
		return err
	}
	defer sess.Close()

	port, err := endpoint.ListenPortFromConfig(sess.Config)
	if err != nil {
		log.WithError(err).Error("tcphost: invalid configuration")
		return err
	}

	srv := tcpserver.New(port, sess.Network, sess.NewTCPListener(), sess.Loggers)
	listener, err := srv.Listen()
	if err != nil {
		log.WithError(err).Error("tcphost: cannot listen")
		return err
	}

	stopCapture, err := sess.MaybeStartCapture(ctx, port, false)
	if err != nil {
		listener.Close()
		log.WithError(err).Error("tcphost: cannot start packet capture")
		return err
	}
	defer stopCapture()

	log.Infof("tcphost %s: listening on %s", version.Version, listener.Addr())
	err = srv.Serve(ctx, listener)
	srv.Wait()
	return err
}
