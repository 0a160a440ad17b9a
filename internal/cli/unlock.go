package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUnlockCmd() *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Unlock the settings of every channel of a package",
		Long:  "Set blockableSystem on every channel of a package so its settings can be changed freely.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if err := t.require(false); err != nil {
				return err
			}
			c, err := dial()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			user := app.Cfg.GetInt("user")

			channels, err := c.ListChannels(ctx, t.Pkg, user, false)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ch := range channels {
				fp := ch.Fingerprint()
				ch.BlockableSystem = true
				if _, err := c.UpdateChannel(ctx, t.Pkg, user, ch, fp); err != nil {
					return fmt.Errorf("unlock %q: %w", ch.ID, err)
				}
				_, _ = fmt.Fprintf(out, "Unlocked: channelId=%q\n", ch.ID)
			}
			app.Log.Info().Str("pkg", t.Pkg).Int("channels", len(channels)).Msg("unlocked")
			return nil
		},
	}
	addTargetFlags(cmd, &t, false)
	return cmd
}
