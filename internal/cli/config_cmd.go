package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nihilian/ncheditor/internal/config"
	"github.com/nihilian/ncheditor/internal/ipc"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(newConfigGenerateCmd())
	cmd.AddCommand(newConfigPathsCmd())
	return cmd
}

type generateMode int

const (
	generateCreate generateMode = iota
	generateOverwrite
	generateUpdate
)

func newConfigGenerateCmd() *cobra.Command {
	var path string
	var overwrite, update bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a config.toml with every ipc, log and output default",
		RunE: func(cmd *cobra.Command, args []string) error {
			if overwrite && update {
				return errors.New("choose either --overwrite or --update")
			}
			if path == "" {
				path = config.DefaultConfigPath()
			}
			mode := generateCreate
			switch {
			case overwrite:
				mode = generateOverwrite
			case update:
				mode = generateUpdate
			}
			return generateConfig(cmd, path, mode)
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "where to write config.toml (defaults to the standard location)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing config (keeps a backup)")
	cmd.Flags().BoolVar(&update, "update", false, "add missing keys to an existing config (keeps a backup)")
	return cmd
}

func generateConfig(cmd *cobra.Command, path string, mode generateMode) error {
	out := cmd.OutOrStdout()
	existing, err := os.ReadFile(path)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if exists && mode == generateCreate {
		return fmt.Errorf("config already exists at %s; use --update to add missing keys or --overwrite to replace it", path)
	}

	content := config.RenderDefaultTOML()
	var added, dropped []string
	if exists && mode == generateUpdate {
		updated, changed := config.UpdateTOML(string(existing))
		if !changed {
			_, _ = fmt.Fprintf(out, "Config already up to date: %s\n", path)
			return nil
		}
		before, err := settingKeys(string(existing))
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		after, err := settingKeys(updated)
		if err != nil {
			return fmt.Errorf("merge %s: %w", path, err)
		}
		added, dropped = keyDiff(before, after), keyDiff(after, before)
		content = updated
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	var backup string
	if exists {
		backup = backupPath(path, time.Now())
		if err := os.WriteFile(backup, existing, 0o600); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Wrote %s\n", path)
	if backup != "" {
		_, _ = fmt.Fprintf(out, "Backup: %s\n", backup)
	}
	if len(added) > 0 {
		_, _ = fmt.Fprintf(out, "Added: %s\n", strings.Join(added, ", "))
	}
	if len(dropped) > 0 {
		_, _ = fmt.Fprintf(out, "Commented out: %s\n", strings.Join(dropped, ", "))
	}

	// An update keeps user values, which may still be out of range.
	if err := validateConfigFile(cmd, path); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s: %v\n", path, err)
	}
	return nil
}

// settingKeys returns the dotted keys of every non-table value in doc.
func settingKeys(doc string) (map[string]bool, error) {
	var raw map[string]any
	md, err := toml.Decode(doc, &raw)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]bool)
	for _, k := range md.Keys() {
		if md.Type(k...) == "Hash" {
			continue
		}
		keys[k.String()] = true
	}
	return keys, nil
}

// keyDiff returns the keys of b missing from a, sorted.
func keyDiff(a, b map[string]bool) []string {
	var out []string
	for k := range b {
		if !a[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func backupPath(path string, now time.Time) string {
	backup := path + ".bak"
	if _, err := os.Stat(backup); err == nil {
		backup = fmt.Sprintf("%s.bak-%s", path, now.Format("20060102-150405"))
	}
	return backup
}

func validateConfigFile(cmd *cobra.Command, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := config.Load(cmd.Context(), v); err != nil {
		return err
	}
	return config.CheckConfigValidity(v)
}

func newConfigPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show the config file, daemon socket and database in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			cfgFile := app.Cfg.ConfigFileUsed()
			if cfgFile == "" {
				cfgFile = "(defaults, expected at " + config.DefaultConfigPath() + ")"
			}
			sock, err := ipc.SocketPath()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintf(tw, "config:\t%s\n", cfgFile)
			_, _ = fmt.Fprintf(tw, "socket:\t%s\n", sock)
			_, _ = fmt.Fprintf(tw, "database:\t%s\n", config.ResolveDBPath(app.Cfg))
			return tw.Flush()
		},
	}
}
