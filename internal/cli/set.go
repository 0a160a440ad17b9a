package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nihilian/ncheditor/internal/present"
	"github.com/nihilian/ncheditor/pkg/api"
)

func newSetCmd() *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "set key=value [key=value...]",
		Short: "Modify a channel or group",
		Long:  "Modify fields of a notification channel (or channel group with -G).\nRun 'ncheditor fields' for the list of keys.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if err := t.require(true); err != nil {
				return err
			}
			updates, err := api.ParseAssignments(args)
			if err != nil {
				return err
			}
			opts, err := outputOptions(app, true)
			if err != nil {
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
			var heading string
			switch v := rec.(type) {
			case *api.ChannelGroup:
				fp := v.Fingerprint()
				if err := api.ApplyGroupFields(v, updates); err != nil {
					return err
				}
				if rec, err = c.UpdateGroup(ctx, t.Pkg, user, v, fp); err != nil {
					return err
				}
				heading = "Updated Notification Channel Group:"
			case *api.Channel:
				fp := v.Fingerprint()
				if err := api.ApplyChannelFields(v, updates); err != nil {
					return err
				}
				if rec, err = c.UpdateChannel(ctx, t.Pkg, user, v, fp); err != nil {
					return err
				}
				heading = "Updated Notification Channel:"
			}
			app.Log.Info().Str("pkg", t.Pkg).Str("id", t.ID).Int("keys", len(updates)).Msg("updated")

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s\n\n", heading)
			return present.RenderRecord(out, rec, opts)
		},
	}
	addTargetFlags(cmd, &t, true)
	cmd.Flags().StringP("output", "o", "", "output mode: plain|pretty|json|yaml (defaults to config output)")
	registerOutputCompletion(cmd)
	return cmd
}
