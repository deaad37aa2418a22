// Package tcpserver implements the server side of the probe.
//
// The server accepts connections and, for each of them, logs every
// read until the peer disconnects, so the transcript shows exactly
// which byte ranges arrived and when.
package tcpserver

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/ooni/tcpprobe/internal/model"
	"github.com/ooni/tcpprobe/internal/netxlite"
)

const (
	// DefaultAcceptDelay is the pause after dispatching each connection.
	DefaultAcceptDelay = 300 * time.Millisecond

	// DefaultBufferSize is the size of the receive buffer.
	DefaultBufferSize = 4096
)

// Server is the probe server. Construct using [New].
type Server struct {
	// AcceptDelay is the pause after each accept.
	AcceptDelay time.Duration

	// BufferSize is the size of the buffer used by each read.
	BufferSize int

	// Listener creates the listening socket.
	Listener model.TCPListener

	// Loggers creates the log channels.
	Loggers model.LoggerFactory

	// Network is the network to listen on ("tcp4", "tcp6" or "tcp").
	Network string

	// Port is the port to listen on.
	Port uint16

	// TimeNow is the function measuring the duration of reads.
	TimeNow func() time.Time

	wg sync.WaitGroup
}

// New creates a new [Server].
func New(port uint16, network string, listener model.TCPListener, loggers model.LoggerFactory) *Server {
	return &Server{
		AcceptDelay: DefaultAcceptDelay,
		BufferSize:  DefaultBufferSize,
		Listener:    listener,
		Loggers:     model.ValidLoggerFactoryOrDefault(loggers),
		Network:     network,
		Port:        port,
		TimeNow:     time.Now,
	}
}

// Listen creates a socket listening on all the interfaces.
func (s *Server) Listen() (net.Listener, error) {
	return s.Listener.ListenTCP(s.Network, &net.TCPAddr{Port: int(s.Port)})
}

// ListenAndServe is [Server.Listen] followed by [Server.Serve].
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections from listener until ctx is done and then
// closes listener and returns nil. It also returns, with an error, when
// the listener is closed by someone else. Serve does not wait for the
// receive loops: use [Server.Wait] for that.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	logger := s.Loggers.NewLogger(listener.Addr().String())
	logger.Info("[Start]")
	defer func() {
		listener.Close()
		logger.Info("[Stop]")
	}()
	for {
		conn, err := netxlite.AcceptContext(ctx, listener)
		switch {
		case err == nil:
			logger.Infof("Accept %s", conn.RemoteAddr())
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.receive(ctx, conn)
			}()
		case netxlite.IsCanceled(err):
			return nil
		case err.Error() == netxlite.FailureConnectionAlreadyClosed:
			return err
		default:
			logger.Warnf("Accept failed: %s", errorDetail(err))
		}
		if err := netxlite.SleepContext(ctx, s.AcceptDelay); err != nil {
			return nil
		}
	}
}

// Wait waits for all the receive loops to terminate.
func (s *Server) Wait() {
	s.wg.Wait()
}
