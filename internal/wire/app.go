package wire

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/nihilian/ncheditor/internal/config"
	"github.com/nihilian/ncheditor/internal/db"
	"github.com/nihilian/ncheditor/internal/logging"
	"github.com/nihilian/ncheditor/pkg/listslice"
)

// App aggregates the major services for easy injection. Store and
// Transfers are only populated on the daemon side, by OpenServices.
type App struct {
	Cfg       *viper.Viper
	Log       zerolog.Logger
	Store     *db.Store
	Transfers *listslice.Registry
}

// BuildApp validates cfg and sets up logging.
func BuildApp(ctx context.Context, cfg *viper.Viper) (*App, error) {
	if err := config.CheckConfigValidity(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := logging.New(logging.ProfileRuntime, cfg.GetString("log.level"), "ncheditor")
	return &App{Cfg: cfg, Log: logger}, nil
}

// OpenServices opens the database and the continuation registry.
func (a *App) OpenServices(ctx context.Context) error {
	store, err := db.Open(ctx, "sqlite://"+config.ResolveDBPath(a.Cfg))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.Store = store
	a.Transfers = listslice.NewRegistry(a.Cfg.GetInt("ipc.max_pending_transfers"), a.Log.With().Str("component", "transfers").Logger())
	return nil
}

// Close releases what OpenServices acquired.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
