package cli

import (
	"fmt"

	"github.com/runoshun/kanban/internal/app"
	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/usecase"
	"github.com/spf13/cobra"
)

// newInitCommand creates the init command.
func newInitCommand(e *env) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a board in the data directory",
		Long: `Create the data directory with an empty store and a config.toml.

Running init again is safe: existing files are left untouched.

Examples:
  # Initialize with the default CSV store
  kanban init

  # Initialize with a SQLite store
  kanban init --backend sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.container()
			if err != nil {
				return err
			}

			cfg := *c.AppConfig
			cfg.Warnings = nil
			uc := c.InitBoardUseCase()
			if cmd.Flags().Changed("backend") {
				parsed, err := domain.ParseStoreBackend(backend)
				if err != nil {
					return err
				}
				cfg.Store = domain.StoreConfig{Backend: parsed}
				store, err := app.OpenStore(parsed, domain.StorePath(c.Config.DataDir, cfg.Store, parsed))
				if err != nil {
					return err
				}
				uc = usecase.NewInitBoard(store, c.ConfigManager)
			}

			out, err := uc.Execute(cmd.Context(), usecase.InitBoardInput{
				DataDir: c.Config.DataDir,
				Config:  &cfg,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.AlreadyInitialized {
				_, _ = fmt.Fprintf(w, "Already initialized: %s\n", out.DataDir)
			} else {
				_, _ = fmt.Fprintf(w, "Initialized kanban in %s (%s store)\n", out.DataDir, cfg.Store.Backend)
			}
			if out.ConfigCreated {
				_, _ = fmt.Fprintf(w, "Created config file: %s\n", out.ConfigPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Store backend: csv, json, sqlite")
	return cmd
}
