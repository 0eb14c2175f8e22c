package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPruneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop files that no longer exist from recent_files.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			dropped, err := svc.Prune(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(dropped) == 0 {
				fmt.Fprintln(out, "Nothing to prune")
				return nil
			}
			for _, e := range dropped {
				fmt.Fprintf(out, "Pruned %s\n", e.Path)
			}
			return nil
		},
	}
}
