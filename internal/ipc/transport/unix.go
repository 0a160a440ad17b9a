package transport

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"time"
)

// DefaultTimeout bounds a round trip when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// UnixListener listens on a Unix domain socket path.
type UnixListener struct{ Path string }

func (u UnixListener) Listen(ctx context.Context) (net.Listener, error) {
	// Remove stale socket
	_ = os.Remove(u.Path)
	l, err := net.Listen("unix", u.Path)
	if err != nil {
		return nil, err
	}
	_ = os.Chmod(u.Path, 0o600)
	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()
	return l, nil
}

// UnixServer implements Server with length-prefixed frames.
type UnixServer struct {
	L Listener
	// OnError, when set, receives per-connection failures.
	OnError func(error)
}

func NewUnixServer(l Listener) *UnixServer { return &UnixServer{L: l} }

func (s *UnixServer) Serve(ctx context.Context, h Handler) error {
	l, err := s.L.Listen(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	errc := make(chan error, 1)
	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				errc <- err
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				if err := s.serveConn(ctx, conn, h); err != nil && s.OnError != nil {
					s.OnError(err)
				}
			}(c)
		}
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		// If context canceled shortly after, suppress spurious errors
		if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
			return nil
		}
		return err
	}
}

func (s *UnixServer) serveConn(ctx context.Context, conn net.Conn, h Handler) error {
	_ = conn.SetDeadline(time.Now().Add(DefaultTimeout))
	req, err := ReadFrame(bufio.NewReader(conn))
	if err != nil {
		return err
	}
	resp, err := h.Handle(ctx, req)
	if err != nil {
		return err
	}
	return WriteFrame(conn, resp)
}

// UnixClient implements Client over a Unix socket, one connection per call.
type UnixClient struct{ Path string }

func NewUnixClient(path string) *UnixClient { return &UnixClient{Path: path} }

func (c *UnixClient) Do(ctx context.Context, req []byte) ([]byte, error) {
	d := &net.Dialer{}
	conn, err := d.DialContext(ctx, "unix", c.Path)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	dl := time.Now().Add(DefaultTimeout)
	if cd, ok := ctx.Deadline(); ok {
		dl = cd
	}
	_ = conn.SetDeadline(dl)

	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if err := WriteFrame(conn, req); err != nil {
		return nil, ctxErr(ctx, err)
	}
	resp, err := ReadFrame(bufio.NewReader(conn))
	if err != nil {
		return nil, ctxErr(ctx, err)
	}
	return resp, nil
}

func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
