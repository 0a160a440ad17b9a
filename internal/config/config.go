package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/nihilian/ncheditor/pkg/listslice"
)

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	// If SetConfigFile was provided upstream it takes precedence; these
	// paths are fallbacks.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "ncheditor"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ncheditor"))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables: NCHEDITOR_*
	v.SetEnvPrefix("ncheditor")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.GetString("data_dir") == "" {
		v.Set("data_dir", defaultDataDir())
	}
	return nil
}

// defaultDataDir resolves $XDG_DATA_HOME/ncheditor or ~/.local/share/ncheditor.
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "ncheditor")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "ncheditor")
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "ncheditor", "config.toml")
}

// ResolveDBPath returns the sqlite DB file path under data_dir.
func ResolveDBPath(v *viper.Viper) string {
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	// Expand ~ for convenience
	if len(dir) > 0 && dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return filepath.Join(dir, "ncheditor.db")
}

// TransferOptions derives list transfer options from the ipc.* keys.
func TransferOptions(v *viper.Viper) listslice.Options {
	max := v.GetInt("ipc.max_txn_bytes")
	if max <= 0 {
		max = listslice.DefaultMaxBytes
	}
	ratio := v.GetFloat64("ipc.warn_element_ratio")
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	return listslice.Options{
		MaxBytes:         max,
		WarnElementBytes: int(float64(max) * ratio),
	}
}

// CheckConfigValidity reports every invalid setting at once.
func CheckConfigValidity(v *viper.Viper) error {
	var errs []error
	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	switch lvl := strings.ToLower(v.GetString("log.level")); lvl {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not a level", lvl))
	}
	switch out := v.GetString("output"); out {
	case "plain", "json", "yaml", "pretty":
	default:
		errs = append(errs, fmt.Errorf("output %q must be plain, json, yaml or pretty", out))
	}
	if v.GetInt("user") < 0 {
		errs = append(errs, errors.New("user must not be negative"))
	}
	// header and handle must fit with room for at least one small element
	if n := v.GetInt("ipc.max_txn_bytes"); n < 64 {
		errs = append(errs, fmt.Errorf("ipc.max_txn_bytes must be at least 64, got %d", n))
	}
	if r := v.GetFloat64("ipc.warn_element_ratio"); r <= 0 || r > 1 {
		errs = append(errs, fmt.Errorf("ipc.warn_element_ratio must be in (0,1], got %v", r))
	}
	if n := v.GetInt("ipc.inline_count_limit"); n < -1 {
		errs = append(errs, fmt.Errorf("ipc.inline_count_limit must be -1 or more, got %d", n))
	}
	if v.GetInt("ipc.max_pending_transfers") <= 0 {
		errs = append(errs, errors.New("ipc.max_pending_transfers must be greater than 0"))
	}
	return errors.Join(errs...)
}
