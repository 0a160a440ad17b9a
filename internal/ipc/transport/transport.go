package transport

import (
	"context"
	"net"
)

// Handler processes one request frame and returns the response frame.
type Handler interface {
	Handle(ctx context.Context, req []byte) (resp []byte, err error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req []byte) ([]byte, error)

func (f HandlerFunc) Handle(ctx context.Context, req []byte) ([]byte, error) { return f(ctx, req) }

// Server accepts connections and dispatches one framed request per
// connection to a Handler.
type Server interface {
	// Serve blocks, handling requests until ctx is done or an error occurs.
	Serve(ctx context.Context, h Handler) error
}

// Client performs a single request/response round trip per call.
type Client interface {
	Do(ctx context.Context, req []byte) (resp []byte, err error)
}

// Listener abstracts how a server obtains a net.Listener.
type Listener interface {
	Listen(ctx context.Context) (net.Listener, error)
}
