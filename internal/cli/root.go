// Package cli provides the command-line interface for kanban.
package cli

import (
	"fmt"

	"github.com/runoshun/kanban/internal/app"
	"github.com/runoshun/kanban/internal/domain"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupItems = "items"
	groupServe = "serve"
)

// ContainerFactory builds the container for a data directory.
type ContainerFactory func(dataDir string) (*app.Container, error)

// env carries the container shared by all subcommands.
// The container is built once the --dir flag has been parsed.
type env struct {
	newContainer ContainerFactory
	c            *app.Container
	dataDir      string
}

// container returns the container, building it on first use.
func (e *env) container() (*app.Container, error) {
	if e.c != nil {
		return e.c, nil
	}
	c, err := e.newContainer(e.dataDir)
	if err != nil {
		return nil, err
	}
	e.c = c
	return c, nil
}

func (e *env) close() {
	if e.c != nil {
		_ = e.c.Close()
	}
}

// NewRootCommand creates the root command for kanban.
// It receives the container factory for dependency injection and version for display.
func NewRootCommand(newContainer ContainerFactory, version string) *cobra.Command {
	e := &env{newContainer: newContainer}

	root := &cobra.Command{
		Use:   "kanban",
		Short: "Task, epic and subtask tracker",
		Long: `kanban tracks standalone tasks, epics and the subtasks that belong to them.

Items can carry a start time and a duration. Overlapping schedules are
rejected, epics derive their status and schedule from their subtasks,
and the board is saved after every change.

Run 'kanban init' to create a board in the current directory, then
'kanban serve' to expose it over HTTP.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.container()
			if err != nil {
				return err
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			e.close()
		},
	}

	root.PersistentFlags().StringVarP(&e.dataDir, "dir", "d", domain.DataDirName, "Data directory")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupItems, Title: "Board Management:"},
		&cobra.Group{ID: groupServe, Title: "Server:"},
	)

	// Setup commands
	initCmd := newInitCommand(e)
	initCmd.GroupID = groupSetup

	configCmd := newConfigCommand(e)
	configCmd.GroupID = groupSetup

	migrateCmd := newMigrateCommand(e)
	migrateCmd.GroupID = groupSetup

	logsCmd := newLogsCommand(e)
	logsCmd.GroupID = groupSetup

	// Board management commands
	taskCmd := newItemCommand(e, taskKind)
	taskCmd.GroupID = groupItems

	epicCmd := newItemCommand(e, epicKind)
	epicCmd.GroupID = groupItems

	subtaskCmd := newItemCommand(e, subtaskKind)
	subtaskCmd.GroupID = groupItems

	prioritizedCmd := newPrioritizedCommand(e)
	prioritizedCmd.GroupID = groupItems

	importCmd := newImportCommand(e)
	importCmd.GroupID = groupItems

	// Server commands
	serveCmd := newServeCommand(e)
	serveCmd.GroupID = groupServe

	// Add subcommands
	root.AddCommand(
		initCmd,
		configCmd,
		migrateCmd,
		logsCmd,
		taskCmd,
		epicCmd,
		subtaskCmd,
		prioritizedCmd,
		importCmd,
		serveCmd,
	)

	return root
}
