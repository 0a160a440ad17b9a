package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/nihilian/ncheditor/internal/util"
)

const completionTimeout = 2 * time.Second

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "bash",
		Short: "Generate Bash completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "zsh",
		Short: "Generate Zsh completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "fish",
		Short: "Generate Fish completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})

	return cmd
}

func registerOutputCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"plain", "pretty", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// registerIDCompletion completes --id with the ids stored for --pkg,
// ranked fuzzily against what was typed so far.
func registerIDCompletion(cmd *cobra.Command, t *target) {
	_ = cmd.RegisterFlagCompletionFunc("id", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if t.Pkg == "" {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		c, err := dial()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
		defer cancel()
		user, _ := cmd.Flags().GetInt("user")
		recs, err := fetchAll(ctx, c, t, user, false)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return util.ScoreCompletions(toComplete, recordIDs(recs), 20), cobra.ShellCompDirectiveNoFileComp
	})
}
