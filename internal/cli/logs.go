package cli

import (
	"fmt"

	"github.com/runoshun/kanban/internal/usecase"
	"github.com/spf13/cobra"
)

// newLogsCommand creates the logs command.
func newLogsCommand(e *env) *cobra.Command {
	var opts struct {
		ItemID int
		Lines  int
	}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the board log",
		Long: `Show entries from <dir>/logs/kanban.log.

Examples:
  # Last 20 entries
  kanban logs -n 20

  # Entries for item #3
  kanban logs --item 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.container()
			if err != nil {
				return err
			}
			out, err := c.ShowLogsUseCase().Execute(cmd.Context(), usecase.ShowLogsInput{
				ItemID: opts.ItemID,
				Lines:  opts.Lines,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out.Content)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.ItemID, "item", 0, "Only show entries for this item")
	cmd.Flags().IntVarP(&opts.Lines, "lines", "n", 0, "Number of lines from the end (0 = all)")
	return cmd
}
