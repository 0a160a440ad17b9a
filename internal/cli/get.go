package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/nihilian/ncheditor/internal/present"
)

func newGetCmd() *cobra.Command {
	var t target
	var includeDeleted bool
	var noHeaders bool
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a channel or group, or list all of a package",
		Long: "Show one notification channel (or channel group with -G) of a package.\n" +
			"Without --id every channel (or group) of the package is listed; -D includes deleted ones.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if err := t.require(false); err != nil {
				return err
			}
			opts, err := outputOptions(app, !noHeaders)
			if err != nil {
				return err
			}
			c, err := dial()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			user := app.Cfg.GetInt("user")

			if t.ID != "" {
				rec, err := fetchOne(ctx, c, &t, user)
				if err != nil {
					return err
				}
				return withPager(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
					return present.RenderRecord(w, rec, opts)
				})
			}
			recs, err := fetchAll(ctx, c, &t, user, includeDeleted)
			if err != nil {
				return err
			}
			app.Log.Debug().Str("pkg", t.Pkg).Int("count", len(recs)).Msg("listed")
			return withPager(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderRecords(w, recs, opts)
			})
		},
	}
	addTargetFlags(cmd, &t, true)
	cmd.Flags().BoolVarP(&includeDeleted, "deleted", "D", false, "include deleted channels when listing")
	cmd.Flags().StringP("output", "o", "", "output mode: plain|pretty|json|yaml (defaults to config output)")
	cmd.Flags().BoolVar(&noHeaders, "noheaders", false, "hide column headers (plain)")
	registerOutputCompletion(cmd)
	return cmd
}
