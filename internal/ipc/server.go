package ipc

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nihilian/ncheditor/internal/ipc/transport"
)

// HandlerFunc handles one decoded command.
type HandlerFunc func(ctx context.Context, m Message) Response

// Serve starts a Unix domain socket server at path and handles one
// Message per connection, replying with a Response.
func Serve(ctx context.Context, path string, log zerolog.Logger, handle HandlerFunc) error {
	srv := transport.NewUnixServer(transport.UnixListener{Path: path})
	srv.OnError = func(err error) {
		log.Debug().Err(err).Msg("ipc connection failed")
	}
	return srv.Serve(ctx, frameHandler(log, handle))
}

func frameHandler(log zerolog.Logger, handle HandlerFunc) transport.Handler {
	return transport.HandlerFunc(func(ctx context.Context, req []byte) ([]byte, error) {
		var m Message
		if err := m.UnmarshalBinary(req); err != nil {
			log.Warn().Err(err).Msg("ipc bad request")
			return Response{OK: false, Msg: MsgBadRequest}.MarshalBinary()
		}
		resp := handle(ctx, m)
		b, err := resp.MarshalBinary()
		if err != nil {
			log.Error().Err(err).Str("cmd", m.Name).Msg("ipc encode response")
			return Response{OK: false, Msg: err.Error()}.MarshalBinary()
		}
		return b, nil
	})
}
