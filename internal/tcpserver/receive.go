package tcpserver

import (
	"context"
	"errors"
	"net"

	"github.com/ooni/tcpprobe/internal/logx"
	"github.com/ooni/tcpprobe/internal/model"
	"github.com/ooni/tcpprobe/internal/netxlite"
)

// receive logs everything we read from conn until the peer disconnects,
// a read fails, or ctx is done. It always closes conn.
func (s *Server) receive(ctx context.Context, conn net.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	host, port := splitAddr(conn.RemoteAddr())
	logger := s.Loggers.NewLogger(host)
	logger.Info(logx.Banner)
	defer func() {
		conn.Close()
		logger.Info(logx.Banner)
	}()

	err := s.readLoop(ctx, conn, logger, port)
	switch {
	case err == nil:
		logger.Infof("%s> Disconnected!", port)
	case netxlite.IsCanceled(err):
		// nothing
	case netxlite.IsInterrupted(err):
		code, _ := netxlite.ErrnoCode(err)
		logger.Infof("%s> Socket interrupted: %d", port, code)
	default:
		logger.Errorf("%s> Error reading: %s", port, errorDetail(err))
	}
}

// readLoop returns nil when the peer performs an orderly close.
func (s *Server) readLoop(ctx context.Context, conn net.Conn, logger model.Logger, port string) error {
	buffer := make([]byte, s.BufferSize)
	for {
		logger.Infof("%s> Read begin", port)
		start := s.TimeNow()
		count, err := netxlite.ReadContext(ctx, conn, buffer)
		elapsed := s.TimeNow().Sub(start)
		if err != nil && !netxlite.IsEOF(err) {
			return err
		}
		if count > 0 {
			logger.Infof("%s> %s", port, logx.HexDump(buffer[:count]))
			logger.Infof("%s> Read end, %d bytes took %s", port, count, elapsed)
		}
		if err != nil || count <= 0 {
			logger.Infof("%s> Read break", port)
			return nil
		}
	}
}

// splitAddr returns the host and the port of addr.
func splitAddr(addr net.Addr) (string, string) {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String(), "0"
	}
	return host, port
}

// errorDetail returns the operation, the failure and the wrapped
// error when err is an [*netxlite.ErrWrapper].
func errorDetail(err error) string {
	var ew *netxlite.ErrWrapper
	if errors.As(err, &ew) {
		return ew.Detail()
	}
	return err.Error()
}
