package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/manager"
	"github.com/spf13/cobra"
)

// itemKind describes one item kind and binds it to the manager operations.
type itemKind struct {
	list   func(m *manager.FileBacked) []domain.Task
	get    func(m *manager.FileBacked, id int) (domain.Task, error)
	add    func(m *manager.FileBacked, t domain.Task) (int, error)
	update func(m *manager.FileBacked, t domain.Task) error
	remove func(m *manager.FileBacked, id int) error
	clear  func(m *manager.FileBacked) error
	name   string
	plural string
	kind   domain.Kind
}

var (
	taskKind = itemKind{
		name: "task", plural: "tasks", kind: domain.KindTask,
		list:   (*manager.FileBacked).Tasks,
		get:    (*manager.FileBacked).GetTask,
		add:    (*manager.FileBacked).AddTask,
		update: (*manager.FileBacked).UpdateTask,
		remove: (*manager.FileBacked).RemoveTask,
		clear:  (*manager.FileBacked).ClearTasks,
	}
	epicKind = itemKind{
		name: "epic", plural: "epics", kind: domain.KindEpic,
		list:   (*manager.FileBacked).Epics,
		get:    (*manager.FileBacked).GetEpic,
		add:    (*manager.FileBacked).AddEpic,
		update: (*manager.FileBacked).UpdateEpic,
		remove: (*manager.FileBacked).RemoveEpic,
		clear:  (*manager.FileBacked).ClearEpics,
	}
	subtaskKind = itemKind{
		name: "subtask", plural: "subtasks", kind: domain.KindSubtask,
		list:   (*manager.FileBacked).Subtasks,
		get:    (*manager.FileBacked).GetSubtask,
		add:    (*manager.FileBacked).AddSubtask,
		update: (*manager.FileBacked).UpdateSubtask,
		remove: (*manager.FileBacked).RemoveSubtask,
		clear:  (*manager.FileBacked).ClearSubtasks,
	}
)

// itemFlags holds the item fields settable from the command line.
// Fields are ordered to minimize memory padding.
type itemFlags struct {
	Name        string
	Description string
	Status      string
	Start       string
	Duration    time.Duration
	EpicID      int
}

func (k itemKind) bindFlags(cmd *cobra.Command, f *itemFlags) {
	cmd.Flags().StringVar(&f.Name, "name", "", "Name")
	cmd.Flags().StringVar(&f.Description, "desc", "", "Description")
	if k.kind == domain.KindEpic {
		// Epic status and schedule are derived from subtasks
		return
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "Status: new, in_progress, done")
	cmd.Flags().StringVar(&f.Start, "start", "", "Start time (2006-01-02T15:04:05); empty clears it on update")
	cmd.Flags().DurationVar(&f.Duration, "duration", 0, "Planned duration in whole minutes (e.g. 45m, 1h30m)")
	if k.kind == domain.KindSubtask {
		cmd.Flags().IntVar(&f.EpicID, "epic", 0, "Parent epic ID")
	}
}

// apply copies the flags the user set onto t.
func (f *itemFlags) apply(cmd *cobra.Command, t *domain.Task) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		t.Name = f.Name
	}
	if changed("desc") {
		t.Description = f.Description
	}
	if changed("status") {
		st, err := domain.ParseStatus(f.Status)
		if err != nil {
			return fmt.Errorf("%w: %q", err, f.Status)
		}
		t.Status = st
	}
	if changed("start") {
		t.StartTime = nil
		if f.Start != "" {
			start, err := domain.ParseLocalTime(f.Start)
			if err != nil {
				return fmt.Errorf("invalid --start %q: %w", f.Start, err)
			}
			t.StartTime = &start
		}
	}
	if changed("duration") {
		t.Duration = domain.Ptr(f.Duration)
	}
	if changed("epic") {
		t.EpicID = f.EpicID
	}
	return nil
}

// newItemCommand creates the command group for one item kind.
func newItemCommand(e *env, k itemKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   k.name,
		Short: fmt.Sprintf("Manage %s", k.plural),
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(
		newItemAddCommand(e, k),
		newItemListCommand(e, k),
		newItemShowCommand(e, k),
		newItemUpdateCommand(e, k),
		newItemRmCommand(e, k),
		newItemClearCommand(e, k),
	)
	if k.kind == domain.KindEpic {
		cmd.AddCommand(newEpicSubtasksCommand(e))
	}
	return cmd
}

// boardManager returns the file-backed manager from the container.
func boardManager(e *env) (*manager.FileBacked, error) {
	c, err := e.container()
	if err != nil {
		return nil, err
	}
	return c.Manager()
}

func newItemAddCommand(e *env, k itemKind) *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:     "add",
		Short:   fmt.Sprintf("Add a %s", k.name),
		Example: addExample(k),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := boardManager(e)
			if err != nil {
				return err
			}

			item := domain.Task{Kind: k.kind}
			if err := flags.apply(cmd, &item); err != nil {
				return err
			}
			if k.kind == domain.KindSubtask && item.EpicID == 0 {
				return errors.New(`required flag(s) "epic" not set`)
			}

			id, err := k.add(m, item)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s #%d\n", k.name, id)
			return nil
		},
	}

	k.bindFlags(cmd, &flags)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newItemListCommand(e *env, k itemKind) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   fmt.Sprintf("List %s", k.plural),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := boardManager(e)
			if err != nil {
				return err
			}
			items := k.list(m)
			if len(items) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No %s\n", k.plural)
				return nil
			}
			printItemList(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

func newItemShowCommand(e *env, k itemKind) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: fmt.Sprintf("Show a %s", k.name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := boardManager(e)
			if err != nil {
				return err
			}
			item, err := k.get(m, id)
			if err != nil {
				return err
			}
			printItemDetail(cmd.OutOrStdout(), item)
			return nil
		},
	}
}

func newItemUpdateCommand(e *env, k itemKind) *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: fmt.Sprintf("Update a %s", k.name),
		Long: fmt.Sprintf(`Update a %s.

Only the fields given as flags are changed.`, k.name),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := boardManager(e)
			if err != nil {
				return err
			}

			item, err := findItem(k.list(m), id, k)
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, &item); err != nil {
				return err
			}
			if err := k.update(m, item); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s #%d\n", k.name, id)
			return nil
		},
	}

	k.bindFlags(cmd, &flags)
	return cmd
}

func newItemRmCommand(e *env, k itemKind) *cobra.Command {
	long := fmt.Sprintf("Remove a %s.", k.name)
	if k.kind == domain.KindEpic {
		long = "Remove an epic together with all of its subtasks."
	}

	return &cobra.Command{
		Use:   "rm <id>",
		Short: fmt.Sprintf("Remove a %s", k.name),
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := boardManager(e)
			if err != nil {
				return err
			}
			if err := k.remove(m, id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s #%d\n", k.name, id)
			return nil
		},
	}
}

func newItemClearCommand(e *env, k itemKind) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: fmt.Sprintf("Remove all %s", k.plural),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to remove all %s without --yes", k.plural)
			}
			m, err := boardManager(e)
			if err != nil {
				return err
			}
			n := len(k.list(m))
			if err := k.clear(m); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s\n", n, k.plural)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm removal")
	return cmd
}

func newEpicSubtasksCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "subtasks <id>",
		Short: "List the subtasks of an epic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := boardManager(e)
			if err != nil {
				return err
			}
			subtasks, err := m.EpicSubtasks(id)
			if err != nil {
				return err
			}
			if len(subtasks) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Epic #%d has no subtasks\n", id)
				return nil
			}
			printItemList(cmd.OutOrStdout(), subtasks)
			return nil
		},
	}
}

// newPrioritizedCommand creates the prioritized command.
func newPrioritizedCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "prioritized",
		Short: "List scheduled tasks and subtasks by start time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := boardManager(e)
			if err != nil {
				return err
			}
			items := m.Prioritized()
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No scheduled items")
				return nil
			}
			printItemList(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

func addExample(k itemKind) string {
	switch k.kind {
	case domain.KindEpic:
		return `  kanban epic add --name "Release" --desc "Ship v1"`
	case domain.KindSubtask:
		return `  kanban subtask add --epic 2 --name "Tag release" --status in_progress`
	default:
		return `  kanban task add --name "Write report" --start 2024-05-01T10:00:00 --duration 30m`
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", s)
	}
	return id, nil
}

// findItem looks up id without recording it in the view history.
func findItem(items []domain.Task, id int, k itemKind) (domain.Task, error) {
	for _, t := range items {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Task{}, fmt.Errorf("%w: #%d", notFoundErr(k.kind), id)
}

func notFoundErr(kind domain.Kind) error {
	switch kind {
	case domain.KindEpic:
		return domain.ErrEpicNotFound
	case domain.KindSubtask:
		return domain.ErrSubtaskNotFound
	default:
		return domain.ErrTaskNotFound
	}
}
