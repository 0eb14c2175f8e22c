package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the list",
		Long: `Empty the list. recent_files.json is rewritten without being read, so
this also recovers from a corrupt record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			if err := svc.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared recent files")
			return nil
		},
	}
}
