package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nihilian/ncheditor/internal/editor"
	"github.com/nihilian/ncheditor/internal/present"
	"github.com/nihilian/ncheditor/pkg/api"
)

func newEditCmd() *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a channel or group in $EDITOR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if err := t.require(true); err != nil {
				return err
			}
			c, err := dial()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			user := app.Cfg.GetInt("user")

			rec, err := fetchOne(ctx, c, &t, user)
			if err != nil {
				return err
			}
			initial, err := editor.ComposeContent(rec)
			if err != nil {
				return err
			}
			path, err := editor.PathFor(t.Pkg, t.ID, rec.Kind())
			if err != nil {
				return err
			}
			defer os.Remove(path)
			final, changed, err := editor.OpenAt(path, initial)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !changed {
				_, _ = fmt.Fprintln(out, "No changes.")
				return nil
			}

			switch v := rec.(type) {
			case *api.ChannelGroup:
				fp := v.Fingerprint()
				if err := editor.ParseEdited(final, v); err != nil {
					return err
				}
				if rec, err = c.UpdateGroup(ctx, t.Pkg, user, v, fp); err != nil {
					return err
				}
			case *api.Channel:
				fp := v.Fingerprint()
				if err := editor.ParseEdited(final, v); err != nil {
					return err
				}
				if rec, err = c.UpdateChannel(ctx, t.Pkg, user, v, fp); err != nil {
					return err
				}
			}
			app.Log.Info().Str("pkg", t.Pkg).Str("id", t.ID).Msg("edited")
			opts, err := outputOptions(app, true)
			if err != nil {
				return err
			}
			return present.RenderRecord(out, rec, opts)
		},
	}
	addTargetFlags(cmd, &t, true)
	return cmd
}
