package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zjrosen/recents/internal/recents/domain"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var preview string

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Mark a file as most recently used",
		Long: `Mark a file as most recently used.

The file must exist. Adding a file that is already listed moves it to the
top. When the list is full the oldest file is dropped.

Examples:
  recents add notes.md
  recents add board.drawnix --preview "Q3 roadmap"`,
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

			var p *string
			if cmd.Flags().Changed("preview") {
				p = domain.Preview(preview)
			}
			entry, err := svc.Add(cmd.Context(), path, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", entry.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&preview, "preview", "", "short preview text stored with the entry")
	return cmd
}

// absPath makes path absolute so entries match regardless of the working
// directory they were added from.
func absPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}
