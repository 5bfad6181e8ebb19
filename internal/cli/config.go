package cli

import (
	"fmt"

	"github.com/runoshun/kanban/internal/infra/config"
	"github.com/runoshun/kanban/internal/usecase"
	"github.com/spf13/cobra"
)

// newConfigCommand creates the config command.
func newConfigCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show effective configuration",
		Long: `Show which config files were loaded and the final merged configuration.

Configuration is merged from built-in defaults, the global file
($XDG_CONFIG_HOME/kanban/config.toml) and <dir>/config.toml, in that order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.container()
			if err != nil {
				return err
			}
			out, err := c.ShowConfigUseCase().Execute(cmd.Context(), usecase.ShowConfigInput{})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			// Display loaded files section
			_, _ = fmt.Fprintln(w, "[Loaded from]")
			for _, info := range []struct {
				path   string
				exists bool
			}{
				{out.GlobalConfig.Path, out.GlobalConfig.Exists},
				{out.LocalConfig.Path, out.LocalConfig.Exists},
			} {
				if info.path == "" {
					continue
				}
				if info.exists {
					_, _ = fmt.Fprintf(w, "- %s\n", info.path)
				} else {
					_, _ = fmt.Fprintf(w, "- %s (not found)\n", info.path)
				}
			}
			_, _ = fmt.Fprintln(w)

			// Display effective config in TOML format
			_, _ = fmt.Fprintln(w, "[Effective Config]")
			content, err := config.Render(out.EffectiveConfig)
			if err != nil {
				return err
			}
			_, _ = w.Write(content)
			return nil
		},
	}

	cmd.AddCommand(newConfigInitCommand(e))
	return cmd
}

// newConfigInitCommand creates the config init subcommand.
func newConfigInitCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate configuration file template",
		Long: `Generate <dir>/config.toml with the default settings.

Error conditions:
- Target file already exists: error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.container()
			if err != nil {
				return err
			}
			out, err := c.InitConfigUseCase().Execute(cmd.Context(), usecase.InitConfigInput{})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", out.Path)
			return nil
		},
	}
}
