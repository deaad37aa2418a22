package netxlite

//
// Context-aware I/O
//

import (
	"context"
	"net"
	"time"
)

// ReadContext performs a single conn.Read into buffer. This function returns
// as soon as ctx is done by expiring the read deadline of conn.
//
// When ctx is done, the returned error wraps ctx.Err() and the caller should
// ignore the returned count. Otherwise, the error, if any, is an *ErrWrapper
// wrapping the read error. Like the underlying Read, this function returns
// an error wrapping io.EOF when the peer has closed the connection.
func ReadContext(ctx context.Context, conn net.Conn, buffer []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, NewTopLevelGenericErrWrapper(ReadOperation, err)
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	count, err := conn.Read(buffer)
	if !stop() {
		return count, NewTopLevelGenericErrWrapper(ReadOperation, ctx.Err())
	}
	if err != nil {
		return count, NewTopLevelGenericErrWrapper(ReadOperation, err)
	}
	return count, nil
}

// WriteContext writes the whole data to conn. This function returns as
// soon as ctx is done by expiring the write deadline of conn.
//
// Note that net.Conn.Write returns an error whenever it cannot write
// all the data, so we only need to call it once.
func WriteContext(ctx context.Context, conn net.Conn, data []byte) error {
	if err := ctx.Err(); err != nil {
		return NewTopLevelGenericErrWrapper(WriteOperation, err)
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetWriteDeadline(time.Now())
	})
	_, err := conn.Write(data)
	if !stop() {
		return NewTopLevelGenericErrWrapper(WriteOperation, ctx.Err())
	}
	return MaybeNewErrWrapper(ClassifyGenericError, WriteOperation, err)
}

// AcceptContext accepts the next connection from listener. When ctx is done,
// this function closes the listener to unblock Accept, so the listener is
// not usable anymore after cancellation.
func AcceptContext(ctx context.Context, listener net.Listener) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewTopLevelGenericErrWrapper(AcceptOperation, err)
	}
	stop := context.AfterFunc(ctx, func() {
		listener.Close()
	})
	conn, err := listener.Accept()
	if !stop() {
		if conn != nil {
			conn.Close()
		}
		return nil, NewTopLevelGenericErrWrapper(AcceptOperation, ctx.Err())
	}
	if err != nil {
		return nil, NewTopLevelGenericErrWrapper(AcceptOperation, err)
	}
	return conn, nil
}

// SleepContext waits for the given delay or until ctx is done, whichever
// happens first. It returns an error wrapping ctx.Err() in the latter case.
func SleepContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return NewTopLevelGenericErrWrapper(SleepOperation, ctx.Err())
	}
}
