// Package sqlitestore persists manager state in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/runoshun/kanban/internal/domain"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id           INTEGER PRIMARY KEY,
	kind         TEXT    NOT NULL,
	name         TEXT    NOT NULL,
	status       TEXT    NOT NULL,
	description  TEXT    NOT NULL DEFAULT '',
	epic_id      INTEGER,
	start_unix   INTEGER,
	duration_min INTEGER
);
CREATE INDEX IF NOT EXISTS idx_items_kind ON items(kind);
CREATE TABLE IF NOT EXISTS meta (
	k TEXT PRIMARY KEY,
	v TEXT NOT NULL
);
`

const metaLastID = "last_id"

// Store implements domain.StateStore using a SQLite database file.
// Each call opens its own connection, so several processes may share the file.
type Store struct {
	path string
}

// New creates a new Store for the given database path.
// The database does not need to exist; it will be created by Initialize or Save.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// IsInitialized checks if the database file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates the database and its schema if it doesn't exist.
func (s *Store) Initialize() (bool, error) {
	existed := s.IsInitialized()
	db, err := s.open(context.Background())
	if err != nil {
		return false, fmt.Errorf("%w: initialize %s: %w", domain.ErrPersistence, s.path, err)
	}
	_ = db.Close()
	return !existed, nil
}

// Load reads the snapshot from the database.
func (s *Store) Load() (*domain.Snapshot, error) {
	if !s.IsInitialized() {
		return nil, domain.ErrNotInitialized
	}
	ctx := context.Background()
	db, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %w", domain.ErrPersistence, s.path, err)
	}
	defer db.Close()

	snap, err := load(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %w", domain.ErrPersistence, s.path, err)
	}
	return snap, nil
}

// Save replaces all rows with the snapshot inside one transaction.
func (s *Store) Save(snap *domain.Snapshot) error {
	ctx := context.Background()
	db, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("%w: save %s: %w", domain.ErrPersistence, s.path, err)
	}
	defer db.Close()

	if err := save(ctx, db, snap); err != nil {
		return fmt.Errorf("%w: save %s: %w", domain.ErrPersistence, s.path, err)
	}
	return nil
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, err
	}
	// WAL allows one writer and many readers; busy_timeout avoids "database is locked" under contention.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

func save(ctx context.Context, db *sql.DB, snap *domain.Snapshot) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Replace-all keeps the table an exact mirror of the snapshot.
	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return err
	}
	for _, group := range [][]domain.Task{snap.Tasks, snap.Epics, snap.Subtasks} {
		for i := range group {
			t := &group[i]
			var epicID, startUnix, durationMin sql.NullInt64
			if t.IsSubtask() {
				epicID = sql.NullInt64{Int64: int64(t.EpicID), Valid: true}
			}
			if !t.IsEpic() {
				if t.StartTime != nil {
					startUnix = sql.NullInt64{Int64: t.StartTime.Unix(), Valid: true}
				}
				if t.Duration != nil {
					durationMin = sql.NullInt64{Int64: int64(*t.Duration / time.Minute), Valid: true}
				}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO items(id, kind, name, status, description, epic_id, start_unix, duration_min) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, string(t.Kind), t.Name, string(t.Status), t.Description, epicID, startUnix, durationMin,
			); err != nil {
				return fmt.Errorf("insert item %d: %w", t.ID, err)
			}
		}
	}

	lastID := max(snap.LastID, snap.MaxID())
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, metaLastID, strconv.Itoa(lastID)); err != nil {
		return err
	}
	return tx.Commit()
}

func load(ctx context.Context, db *sql.DB) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}

	var raw string
	err := db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, metaLastID).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		if snap.LastID, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", metaLastID, raw, err)
		}
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, kind, name, status, description, epic_id, start_unix, duration_min FROM items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t                              domain.Task
			kind, status                   string
			epicID, startUnix, durationMin sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &kind, &t.Name, &status, &t.Description, &epicID, &startUnix, &durationMin); err != nil {
			return nil, err
		}
		if t.Kind, err = domain.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("item %d: %w: %q", t.ID, err, kind)
		}
		if t.Status, err = domain.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("item %d: %w: %q", t.ID, err, status)
		}
		if epicID.Valid {
			t.EpicID = int(epicID.Int64)
		}
		if startUnix.Valid {
			t.StartTime = domain.Ptr(time.Unix(startUnix.Int64, 0))
		}
		if durationMin.Valid {
			t.Duration = domain.Ptr(time.Duration(durationMin.Int64) * time.Minute)
		}

		switch t.Kind {
		case domain.KindEpic:
			snap.Epics = append(snap.Epics, t)
		case domain.KindSubtask:
			snap.Subtasks = append(snap.Subtasks, t)
		default:
			snap.Tasks = append(snap.Tasks, t)
		}
	}
	return snap, rows.Err()
}

// Ensure Store implements the persistence ports.
var (
	_ domain.StateStore       = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)
