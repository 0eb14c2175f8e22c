package cmd

import (
	"github.com/spf13/cobra"
)

func newOpenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Print a file and mark it as most recently used",
		Long: `Print a file to stdout and mark it as most recently used.

If the file was read but the list could not be updated, the content is
still printed and a warning goes to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}
			svc, err := opts.service()
			if err != nil {
				return err
			}

			content, err := svc.TrackedRead(cmd.Context(), path)
			if content != nil {
				if _, werr := cmd.OutOrStdout().Write(content); werr != nil {
					return werr
				}
			}
			return opts.warnTracking(cmd, err)
		},
	}
}
