// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/kanban/internal/domain"
)

// ImportBoardInput contains the parameters for importing a board file.
type ImportBoardInput struct {
	Content       []byte // YAML board file content
	DryRun        bool   // If true, parse and validate without creating items
	SkipConflicts bool   // If true, items rejected for a schedule conflict are skipped
}

// ImportedItem is an item created (or planned in dry-run mode) from a board file.
// Fields are ordered to minimize memory padding.
type ImportedItem struct {
	Name    string
	Kind    domain.Kind
	ID      int // 0 in dry-run mode
	EpicID  int // Parent epic ID (subtasks only, 0 in dry-run mode)
	Skipped bool
}

// ImportBoardOutput contains the result of importing a board file.
type ImportBoardOutput struct {
	Items   []ImportedItem
	Created int
	Skipped int
}

// ImportBoard creates tasks, epics and subtasks from a YAML board file.
type ImportBoard struct {
	items  domain.ItemWriter
	logger domain.Logger
}

// NewImportBoard creates a new ImportBoard use case.
func NewImportBoard(items domain.ItemWriter, logger domain.Logger) *ImportBoard {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &ImportBoard{items: items, logger: logger}
}

// Execute parses the board and creates its items.
// Tasks are created first, then each epic followed by its subtasks.
func (uc *ImportBoard) Execute(ctx context.Context, in ImportBoardInput) (*ImportBoardOutput, error) {
	board, err := domain.ParseBoardDraft(in.Content)
	if err != nil {
		return nil, err
	}

	out := &ImportBoardOutput{Items: make([]ImportedItem, 0, board.Count())}
	if in.DryRun {
		return uc.dryRun(board, out)
	}

	for i, d := range board.Tasks {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		task, _ := d.ToTask(domain.KindTask) // validated by ParseBoardDraft
		id, err := uc.items.AddTask(task)
		if err := uc.record(out, in, task, id, 0, err); err != nil {
			return out, fmt.Errorf("task %d: %w", i+1, err)
		}
	}

	for i, e := range board.Epics {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		epic, _ := e.ToEpic()
		epicID, err := uc.items.AddEpic(epic)
		if err := uc.record(out, in, epic, epicID, 0, err); err != nil {
			return out, fmt.Errorf("epic %d: %w", i+1, err)
		}
		for j, d := range e.Subtasks {
			sub, _ := d.ToTask(domain.KindSubtask)
			sub.EpicID = epicID
			id, err := uc.items.AddSubtask(sub)
			if err := uc.record(out, in, sub, id, epicID, err); err != nil {
				return out, fmt.Errorf("epic %d subtask %d: %w", i+1, j+1, err)
			}
		}
	}

	uc.logger.Info(0, "import", fmt.Sprintf("imported %d items, skipped %d", out.Created, out.Skipped))
	return out, nil
}

// record appends the result of one add to out.
// Returns the add error unless it is a schedule conflict and conflicts are skipped.
func (uc *ImportBoard) record(out *ImportBoardOutput, in ImportBoardInput, item domain.Task, id, epicID int, err error) error {
	if err != nil {
		if !in.SkipConflicts || !errors.Is(err, domain.ErrScheduleConflict) {
			return err
		}
		uc.logger.Warn(0, "import", fmt.Sprintf("skipped %q: %v", item.Name, err))
		out.Items = append(out.Items, ImportedItem{Name: item.Name, Kind: item.Kind, EpicID: epicID, Skipped: true})
		out.Skipped++
		return nil
	}
	out.Items = append(out.Items, ImportedItem{Name: item.Name, Kind: item.Kind, ID: id, EpicID: epicID})
	out.Created++
	return nil
}

// dryRun lists the items that would be created.
func (uc *ImportBoard) dryRun(board *domain.BoardDraft, out *ImportBoardOutput) (*ImportBoardOutput, error) {
	for _, d := range board.Tasks {
		task, _ := d.ToTask(domain.KindTask)
		out.Items = append(out.Items, ImportedItem{Name: task.Name, Kind: domain.KindTask})
	}
	for _, e := range board.Epics {
		epic, _ := e.ToEpic()
		out.Items = append(out.Items, ImportedItem{Name: epic.Name, Kind: domain.KindEpic})
		for _, d := range e.Subtasks {
			sub, _ := d.ToTask(domain.KindSubtask)
			out.Items = append(out.Items, ImportedItem{Name: sub.Name, Kind: domain.KindSubtask})
		}
	}
	return out, nil
}
