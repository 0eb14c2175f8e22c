package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zjrosen/recents/internal/recents/application"
)

var warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"})

func newSaveCmd(opts *rootOptions) *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "save <path>",
		Short: "Write a file and mark it as most recently used",
		Long: `Write a file and mark it as most recently used.

Content comes from --content, or stdin when the flag is not given. The file
is created or truncated. If it was written but the list could not be
updated, the file is kept and a warning goes to stderr.

Examples:
  recents save notes.md --content "# Notes"
  echo '{"elements":[]}' | recents save board.drawnix`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}

			var data []byte
			if cmd.Flags().Changed("content") {
				data = []byte(content)
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
			}

			svc, err := opts.service()
			if err != nil {
				return err
			}
			if err := svc.TrackedWrite(cmd.Context(), path, data); err != nil {
				if werr := opts.warnTracking(cmd, err); werr != nil {
					return werr
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "content to write instead of reading stdin")
	return cmd
}

// warnTracking turns a tracking failure into a warning on stderr. Any other
// error is returned unchanged.
func (o *rootOptions) warnTracking(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	if !application.IsTrackingError(err) {
		return err
	}
	fmt.Fprintln(o.errOut(cmd), warningStyle.Render("warning: "+err.Error()))
	return nil
}
