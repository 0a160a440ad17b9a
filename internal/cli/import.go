package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/nihilian/ncheditor/internal/ipc"
	"github.com/nihilian/ncheditor/pkg/api"
)

// seedFile is the layout of an import file:
//
//	[[package]]
//	name = "com.example.app"
//	appId = 10001            # optional, 0 allocates the next free id
//
//	  [[package.group]]
//	  id = "main"
//	  name = "Main"
//
//	  [[package.channel]]
//	  id = "alerts"
//	  name = "Alerts"
//	  importance = 4
//	  group = "main"
//
// Channel and group tables accept every field `get -o json` prints.
type seedFile struct {
	Packages []seedPackage `toml:"package"`
}

type seedPackage struct {
	Name     string           `toml:"name"`
	AppID    int              `toml:"appId"`
	User     int              `toml:"user"`
	Groups   []toml.Primitive `toml:"group"`
	Channels []toml.Primitive `toml:"channel"`
}

type importStats struct {
	packages, groups, channels, skipped int
}

// count bumps created on success and skipped on a conflict; other errors
// are returned.
func (st *importStats) count(err error, created *int) error {
	switch {
	case err == nil:
		*created++
	case errors.Is(err, ipc.ErrConflict):
		st.skipped++
	default:
		return err
	}
	return nil
}

func newImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create packages, groups and channels from a TOML seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) == "" {
				return fmt.Errorf("--file is required")
			}
			app := getApp(cmd)

			var seed seedFile
			md, err := toml.DecodeFile(file, &seed)
			if err != nil {
				return fmt.Errorf("decode %s: %w", file, err)
			}
			c, err := dial()
			if err != nil {
				return err
			}

			var st importStats
			for _, p := range seed.Packages {
				if err := importPackage(cmd, c, &md, p, &st); err != nil {
					return err
				}
			}
			for _, k := range md.Undecoded() {
				app.Log.Warn().Str("key", k.String()).Msg("ignored unknown seed key")
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported: packages=%d groups=%d channels=%d\nSkipped (conflict): %d\n",
				st.packages, st.groups, st.channels, st.skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "input TOML seed file")
	return cmd
}

// importPackage creates p and its records. Records that already exist are
// counted as skipped; any other failure aborts the import.
func importPackage(cmd *cobra.Command, c *ipc.Client, md *toml.MetaData, p seedPackage, st *importStats) error {
	ctx := cmd.Context()
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("seed package without name")
	}
	if err := st.count(c.CreatePackage(ctx, p.Name, p.AppID), &st.packages); err != nil {
		return fmt.Errorf("package %s: %w", p.Name, err)
	}

	for i, prim := range p.Groups {
		g := api.NewChannelGroup("", "")
		if err := md.PrimitiveDecode(prim, g); err != nil {
			return fmt.Errorf("package %s group #%d: %w", p.Name, i+1, err)
		}
		g.Channels = nil
		g.Normalize()
		_, err := c.CreateGroup(ctx, p.Name, p.User, g)
		if err := st.count(err, &st.groups); err != nil {
			return fmt.Errorf("package %s group %q: %w", p.Name, g.ID, err)
		}
	}

	for i, prim := range p.Channels {
		ch := api.NewChannel("", "", api.ImportanceDefault)
		if err := md.PrimitiveDecode(prim, ch); err != nil {
			return fmt.Errorf("package %s channel #%d: %w", p.Name, i+1, err)
		}
		ch.Normalize()
		_, err := c.CreateChannel(ctx, p.Name, p.User, ch)
		if err := st.count(err, &st.channels); err != nil {
			return fmt.Errorf("package %s channel %q: %w", p.Name, ch.ID, err)
		}
	}
	return nil
}
