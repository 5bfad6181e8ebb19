package cli

import (
	"fmt"
	"strings"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/usecase"
	"github.com/spf13/cobra"
)

// newMigrateCommand creates the migrate command.
func newMigrateCommand(e *env) *cobra.Command {
	var opts struct {
		From  string
		To    string
		Force bool
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy the board between store backends",
		Long: `Copy all tasks, epics and subtasks from one store backend to another.

The configured store path is used for the configured backend; other
backends use their default file in the data directory. Update [store]
in config.toml afterwards to switch to the new backend.

Examples:
  # Move from the default CSV file to SQLite
  kanban migrate --from csv --to sqlite

  # Overwrite an existing JSON store
  kanban migrate --from sqlite --to json --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.container()
			if err != nil {
				return err
			}
			if opts.From == "" {
				opts.From = c.AppConfig.Store.Backend
			}
			if strings.EqualFold(opts.From, opts.To) {
				return fmt.Errorf("source and destination are both %q", opts.To)
			}

			uc, err := c.MigrateStoreUseCase(opts.From, opts.To)
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), usecase.MigrateStoreInput{Force: opts.Force})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d task(s), %d epic(s), %d subtask(s) from %s to %s\n",
				out.Tasks, out.Epics, out.Subtasks, opts.From, opts.To)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "Source backend (default: configured backend)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Destination backend: "+strings.Join(domain.AllStoreBackends(), ", "))
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite a non-empty destination store")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
