package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nihilian/ncheditor/internal/daemon"
)

func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the channel store daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting ncheditor daemon...\n")
			return daemon.Run(cmd.Context(), app)
		},
	}
	cmd.Flags().String("http_addr", "", "health endpoint listen address (defaults to config http_addr)")
	return cmd
}
