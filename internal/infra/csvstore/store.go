// Package csvstore persists manager state as a flat CSV file.
package csvstore

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/infra/filelock"
)

// Header is the first line of every file written by Store.
var Header = []string{"id", "type", "name", "status", "description", "epic", "start", "duration"}

// minColumns is the width of rows written before schedules were stored.
const minColumns = 5

// Column indexes.
const (
	colID = iota
	colKind
	colName
	colStatus
	colDescription
	colEpic
	colStart
	colDuration
)

// Store implements domain.StateStore using a CSV file.
// One row per item: tasks first, then epics, then subtasks.
// The file carries no ID counter; loading resumes after the largest ID.
type Store struct {
	path string
}

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the file path.
func (s *Store) Path() string {
	return s.path
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	return filelock.Exists(s.path)
}

// Initialize creates a file containing only the header if it doesn't exist.
func (s *Store) Initialize() (bool, error) {
	created := false
	err := filelock.With(s.path, filelock.Exclusive, func() error {
		if filelock.Exists(s.path) {
			return nil
		}
		created = true
		return s.write(&domain.Snapshot{})
	})
	if err != nil {
		return false, fmt.Errorf("%w: initialize %s: %w", domain.ErrPersistence, s.path, err)
	}
	return created, nil
}

// Load reads the snapshot from the file.
func (s *Store) Load() (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := filelock.With(s.path, filelock.Shared, func() error {
		content, err := os.ReadFile(s.path)
		if err != nil {
			if os.IsNotExist(err) {
				return domain.ErrNotInitialized
			}
			return fmt.Errorf("read store file: %w", err)
		}
		snap, err = Decode(bytes.NewReader(content))
		return err
	})
	if errors.Is(err, domain.ErrNotInitialized) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %w", domain.ErrPersistence, s.path, err)
	}
	return snap, nil
}

// Save replaces the file with the snapshot.
func (s *Store) Save(snap *domain.Snapshot) error {
	err := filelock.With(s.path, filelock.Exclusive, func() error {
		return s.write(snap)
	})
	if err != nil {
		return fmt.Errorf("%w: save %s: %w", domain.ErrPersistence, s.path, err)
	}
	return nil
}

func (s *Store) write(snap *domain.Snapshot) error {
	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return err
	}
	return filelock.WriteAtomic(s.path, buf.Bytes())
}

// Encode writes the snapshot as CSV with a header line.
func Encode(w io.Writer, snap *domain.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, group := range [][]domain.Task{snap.Tasks, snap.Epics, snap.Subtasks} {
		for i := range group {
			if err := cw.Write(toRecord(&group[i])); err != nil {
				return fmt.Errorf("write item %d: %w", group[i].ID, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads a snapshot written by Encode.
// The header line is skipped. Rows without start and duration columns are accepted.
func Decode(r io.Reader) (*domain.Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	snap := &domain.Snapshot{}
	line := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line++
		if line == 1 && isHeader(record) {
			continue
		}

		task, err := fromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		switch task.Kind {
		case domain.KindEpic:
			snap.Epics = append(snap.Epics, task)
		case domain.KindSubtask:
			snap.Subtasks = append(snap.Subtasks, task)
		default:
			snap.Tasks = append(snap.Tasks, task)
		}
	}
	snap.LastID = snap.MaxID()
	return snap, nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[colID]), Header[colID])
}

func toRecord(t *domain.Task) []string {
	record := make([]string, len(Header))
	record[colID] = strconv.Itoa(t.ID)
	record[colKind] = string(t.Kind)
	record[colName] = t.Name
	record[colStatus] = string(t.Status)
	record[colDescription] = t.Description
	if t.IsSubtask() {
		record[colEpic] = strconv.Itoa(t.EpicID)
	}
	// Epic schedules are derived from subtasks and not stored.
	if t.IsEpic() {
		return record
	}
	if t.StartTime != nil {
		record[colStart] = domain.FormatLocalTime(*t.StartTime)
	}
	if t.Duration != nil {
		record[colDuration] = strconv.FormatInt(int64(*t.Duration/time.Minute), 10)
	}
	return record
}

func fromRecord(record []string) (domain.Task, error) {
	if len(record) < minColumns {
		return domain.Task{}, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(record))
	}
	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	id, err := strconv.Atoi(field(colID))
	if err != nil {
		return domain.Task{}, fmt.Errorf("invalid id %q: %w", field(colID), err)
	}
	kind, err := domain.ParseKind(field(colKind))
	if err != nil {
		return domain.Task{}, fmt.Errorf("%w: %q", err, field(colKind))
	}
	status, err := domain.ParseStatus(field(colStatus))
	if err != nil {
		return domain.Task{}, fmt.Errorf("%w: %q", err, field(colStatus))
	}

	task := domain.Task{
		ID:          id,
		Kind:        kind,
		Name:        record[colName],
		Status:      status,
		Description: record[colDescription],
	}
	if kind == domain.KindSubtask {
		if task.EpicID, err = strconv.Atoi(field(colEpic)); err != nil {
			return domain.Task{}, fmt.Errorf("invalid epic id %q: %w", field(colEpic), err)
		}
	}
	if kind == domain.KindEpic {
		return task, nil
	}
	if v := field(colStart); v != "" {
		start, err := domain.ParseLocalTime(v)
		if err != nil {
			return domain.Task{}, fmt.Errorf("invalid start %q: %w", v, err)
		}
		task.StartTime = &start
	}
	if v := field(colDuration); v != "" {
		minutes, err := strconv.ParseInt(v, 10, 64)
		if err != nil || minutes < 0 {
			return domain.Task{}, fmt.Errorf("invalid duration %q", v)
		}
		d := time.Duration(minutes) * time.Minute
		task.Duration = &d
	}
	return task, nil
}

// Ensure Store implements the persistence ports.
var (
	_ domain.StateStore       = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)
