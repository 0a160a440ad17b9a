package cli

import (
	"github.com/spf13/cobra"

	"github.com/nihilian/ncheditor/internal/present"
)

func newFieldsCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Print the keys accepted by set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return present.RenderFields(out, !plain && isTerminal(out))
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "never style the output")
	return cmd
}
