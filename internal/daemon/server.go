package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/nihilian/ncheditor/internal/ipc"
	"github.com/nihilian/ncheditor/internal/wire"
)

// Run starts the daemon using the provided App. Services missing from app
// are opened here and closed on return. The caller controls the lifecycle
// via ctx.
func Run(ctx context.Context, app *wire.App) error {
	if app.Store == nil || app.Transfers == nil {
		if err := app.OpenServices(ctx); err != nil {
			return err
		}
		defer app.Close()
	}

	sock, err := ipc.SocketPath()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc := NewService(app)
	ipcDone := make(chan error, 1)
	go func() {
		ipcDone <- ipc.Serve(ctx, sock, app.Log, svc.Handle)
	}()
	app.Log.Info().Str("socket", sock).Msg("daemon listening")

	httpErr := make(chan error, 1)
	if addr := strings.TrimSpace(app.Cfg.GetString("http_addr")); addr != "" {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			cancel()
			<-ipcDone
			return fmt.Errorf("health listener: %w", err)
		}
		app.Log.Info().Str("addr", l.Addr().String()).Msg("health endpoint listening")
		go func() { httpErr <- Start(ctx, l) }()
	}

	select {
	case <-ctx.Done():
		return <-ipcDone
	case err := <-ipcDone:
		return err
	case err := <-httpErr:
		cancel()
		<-ipcDone
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Start launches the HTTP health server on a provided listener.
func Start(ctx context.Context, l net.Listener) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "ok")
	})
	srv := &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.Serve(l)
}
