package domain

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// BoardDraft is a set of items to be created from a YAML board file.
//
// Format:
//
//	tasks:
//	  - name: Write report
//	    start: 2024-05-01T10:00:00
//	    duration: 30m
//	epics:
//	  - name: Release
//	    description: Ship v1
//	    subtasks:
//	      - name: Tag
//	        status: done
type BoardDraft struct {
	Tasks []ItemDraft `yaml:"tasks"`
	Epics []EpicDraft `yaml:"epics"`
}

// ItemDraft is a task or subtask entry of a board file.
// Fields are ordered to minimize memory padding.
type ItemDraft struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
	Start       string `yaml:"start"`    // Local date-time, e.g. 2024-05-01T10:00:00
	Duration    string `yaml:"duration"` // Go duration, e.g. 45m or 1h30m
}

// EpicDraft is an epic entry with its subtasks.
type EpicDraft struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Subtasks    []ItemDraft `yaml:"subtasks"`
}

// Count returns the number of items the draft would create.
func (b *BoardDraft) Count() int {
	n := len(b.Tasks) + len(b.Epics)
	for _, e := range b.Epics {
		n += len(e.Subtasks)
	}
	return n
}

// ParseBoardDraft parses and validates a YAML board file.
func ParseBoardDraft(content []byte) (*BoardDraft, error) {
	if strings.TrimSpace(string(content)) == "" {
		return nil, ErrEmptyFile
	}

	var board BoardDraft
	if err := yaml.Unmarshal(content, &board); err != nil {
		return nil, fmt.Errorf("parse board: %w", err)
	}
	if board.Count() == 0 {
		return nil, ErrNoItemsInFile
	}

	for i, d := range board.Tasks {
		if _, err := d.ToTask(KindTask); err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
	}
	for i, e := range board.Epics {
		if _, err := e.ToEpic(); err != nil {
			return nil, fmt.Errorf("epic %d: %w", i+1, err)
		}
		for j, d := range e.Subtasks {
			if _, err := d.ToTask(KindSubtask); err != nil {
				return nil, fmt.Errorf("epic %d subtask %d: %w", i+1, j+1, err)
			}
		}
	}
	return &board, nil
}

// ToTask converts the draft into an item of the given kind.
func (d ItemDraft) ToTask(kind Kind) (Task, error) {
	task := Task{
		Kind:        kind,
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
		Status:      StatusNew,
	}
	if d.Status != "" {
		st, err := ParseStatus(d.Status)
		if err != nil {
			return Task{}, fmt.Errorf("%w: %q", err, d.Status)
		}
		task.Status = st
	}
	if d.Start != "" {
		start, err := ParseLocalTime(d.Start)
		if err != nil {
			return Task{}, fmt.Errorf("invalid start %q: %w", d.Start, err)
		}
		task.StartTime = &start
	}
	if d.Duration != "" {
		dur, err := time.ParseDuration(d.Duration)
		if err != nil {
			return Task{}, fmt.Errorf("invalid duration %q: %w", d.Duration, err)
		}
		task.Duration = &dur
	}
	if err := task.Validate(); err != nil {
		return Task{}, err
	}
	return task, nil
}

// ToEpic converts the draft into an epic without its subtasks.
func (e EpicDraft) ToEpic() (Task, error) {
	epic := Task{
		Kind:        KindEpic,
		Name:        strings.TrimSpace(e.Name),
		Description: e.Description,
		Status:      StatusNew,
	}
	if err := epic.Validate(); err != nil {
		return Task{}, err
	}
	return epic, nil
}
