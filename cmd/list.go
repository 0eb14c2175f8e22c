package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/recents/internal/presentation"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent files, newest first",
		Long: `List recent files, newest first.

Files that no longer exist are left out. They stay in recent_files.json
until the next change, 'recents prune', or a list with persist_cleanup
enabled.

Examples:
  recents list
  recents list --format json | jq '.[].path'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := presentation.ParseFormat(format)
			if err != nil {
				return err
			}
			svc, err := opts.service()
			if err != nil {
				return err
			}

			entries, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).
				Format(f, presentation.FromDomainEntries(entries))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(presentation.FormatTable), "output format: table, json, yaml")
	return cmd
}
