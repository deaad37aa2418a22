package testingx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/ooni/tcpprobe/internal/model"
	"github.com/ooni/tcpprobe/internal/runtimex"
)

// CloseVerify verifies that we're closing all the sockets we
// dial, listen or accept.
//
// The zero value of this struct is ready to use.
type CloseVerify struct {
	mu    sync.Mutex
	conns map[string]io.Closer
}

func (cv *CloseVerify) addConn(key string, closer io.Closer) {
	defer cv.mu.Unlock()
	cv.mu.Lock()
	if cv.conns == nil {
		cv.conns = make(map[string]io.Closer)
	}
	_, good := cv.conns[key]
	runtimex.Assert(!good, fmt.Sprintf("we're already tracking: %s", key))
	cv.conns[key] = closer
}

func (cv *CloseVerify) removeConn(key string) {
	defer cv.mu.Unlock()
	cv.mu.Lock()
	_, good := cv.conns[key]
	runtimex.Assert(good, fmt.Sprintf("we're not tracking: %s", key))
	delete(cv.conns, key)
}

// CheckForOpenConns returns an error if we still have some open sockets.
func (cv *CloseVerify) CheckForOpenConns() error {
	defer cv.mu.Unlock()
	cv.mu.Lock()
	var errorv []error
	for key := range cv.conns {
		errorv = append(errorv, fmt.Errorf("%s has not been closed", key))
	}
	return errors.Join(errorv...) // returns nil if empty
}

// socketKey returns the key identifying a socket.
func socketKey(prefix string, addr net.Addr) string {
	return fmt.Sprintf("%s %s/%s", prefix, addr.String(), addr.Network())
}

// WrapDialer returns a [model.Dialer] that communicates the
// sockets it creates to the [*CloseVerify] struct.
func (cv *CloseVerify) WrapDialer(dialer model.Dialer) model.Dialer {
	return &closeVerifyDialer{Dialer: dialer, cv: cv}
}

type closeVerifyDialer struct {
	model.Dialer
	cv *CloseVerify
}

// DialContext implements model.Dialer.
func (d *closeVerifyDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return d.cv.wrapConn("dial", conn), nil
}

func (cv *CloseVerify) wrapConn(prefix string, conn net.Conn) net.Conn {
	key := socketKey(prefix, conn.LocalAddr())
	wrapped := &closeVerifyConn{Conn: conn, cv: cv, key: key}
	cv.addConn(key, wrapped)
	return wrapped
}

type closeVerifyConn struct {
	net.Conn
	cv   *CloseVerify
	key  string
	once sync.Once
}

func (c *closeVerifyConn) Close() (err error) {
	c.once.Do(func() {
		c.cv.removeConn(c.key)
		err = c.Conn.Close()
	})
	return
}

// WrapTCPListener returns a [model.TCPListener] that communicates the
// listeners it creates, and the conns they accept, to the [*CloseVerify].
func (cv *CloseVerify) WrapTCPListener(tl model.TCPListener) model.TCPListener {
	return &closeVerifyTCPListener{TCPListener: tl, cv: cv}
}

type closeVerifyTCPListener struct {
	model.TCPListener
	cv *CloseVerify
}

// ListenTCP implements model.TCPListener.
func (tl *closeVerifyTCPListener) ListenTCP(network string, addr *net.TCPAddr) (net.Listener, error) {
	listener, err := tl.TCPListener.ListenTCP(network, addr)
	if err != nil {
		return nil, err
	}
	key := socketKey("listen", listener.Addr())
	wrapped := &closeVerifyListener{Listener: listener, cv: tl.cv, key: key}
	tl.cv.addConn(key, wrapped)
	return wrapped, nil
}

type closeVerifyListener struct {
	net.Listener
	cv   *CloseVerify
	key  string
	once sync.Once
}

func (c *closeVerifyListener) Accept() (net.Conn, error) {
	conn, err := c.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return c.cv.wrapConn("accept "+conn.RemoteAddr().String(), conn), nil
}

func (c *closeVerifyListener) Close() (err error) {
	c.once.Do(func() {
		c.cv.removeConn(c.key)
		err = c.Listener.Close()
	})
	return
}
