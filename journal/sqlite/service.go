// Package sqlite keeps the run journal in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/internal/dao"
	"github.com/viant/mgmtflow/journal"

	_ "modernc.org/sqlite"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    flow        TEXT NOT NULL,
    state       TEXT NOT NULL,
    total       INTEGER NOT NULL,
    completed   INTEGER NOT NULL,
    task        TEXT,
    error       TEXT,
    started_at  DATETIME NOT NULL,
    finished_at DATETIME
)`

const selectRuns = `SELECT id, flow, state, total, completed, task, error, started_at, finished_at FROM runs`

// Service is a SQLite journal store.
type Service struct {
	db *sql.DB
}

var _ journal.Store = (*Service)(nil)

// New opens the database at dbPath and creates the schema.
func New(dbPath string) (*Service, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(createRunsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Service{db: db}, nil
}

// Close closes the database.
func (s *Service) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a run.
func (s *Service) Save(ctx context.Context, run *journal.Run) error {
	if run == nil {
		return dao.ErrNilEntity
	}
	if run.ID == "" {
		return dao.ErrInvalidID
	}
	var finishedAt sql.NullTime
	if run.FinishedAt != nil {
		finishedAt = sql.NullTime{Time: run.FinishedAt.UTC(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, flow, state, total, completed, task, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Flow, string(run.State), run.Total, run.Completed, run.Task, run.Error, run.StartedAt.UTC(), finishedAt,
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// Load reads a run.
func (s *Service) Load(ctx context.Context, id string) (*journal.Run, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	run, err := scan(s.db.QueryRowContext(ctx, selectRuns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, dao.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	return run, nil
}

// Delete removes a run.
func (s *Service) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s: %w", id, dao.ErrNotFound)
	}
	return nil
}

// List returns matching runs, newest first.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*journal.Run, error) {
	query := selectRuns
	var args []interface{}
	if states := stateFilter(parameters); len(states) > 0 {
		query += " WHERE state IN (?" + strings.Repeat(", ?", len(states)-1) + ")"
		for _, state := range states {
			args = append(args, state)
		}
	}
	query += " ORDER BY started_at DESC, id DESC"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var runs []*journal.Run
	for rows.Next() {
		run, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scan(row scanner) (*journal.Run, error) {
	run := &journal.Run{}
	var state string
	var task, errorText sql.NullString
	var startedAt time.Time
	var finishedAt sql.NullTime
	if err := row.Scan(&run.ID, &run.Flow, &state, &run.Total, &run.Completed, &task, &errorText, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	run.State = flow.State(state)
	run.Task = task.String
	run.Error = errorText.String
	run.StartedAt = startedAt
	if finishedAt.Valid {
		finished := finishedAt.Time
		run.FinishedAt = &finished
	}
	return run, nil
}

func stateFilter(parameters []*dao.Parameter) []string {
	var ret []string
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != journal.StateParameter {
			continue
		}
		switch actual := parameter.Value.(type) {
		case string:
			ret = append(ret, actual)
		case []string:
			ret = append(ret, actual...)
		}
	}
	return ret
}
