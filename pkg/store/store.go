//Package store keeps the registry of analysis runs in a sqlite database
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chenBenjamin97/tactical-map/pkg/utils"
)

//ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

//Run is one analysis of an uploaded video
type Run struct {
	ID        string   `json:"id"`
	Source    string   `json:"source"`
	Status    string   `json:"status"`
	Frames    int      `json:"frames"`
	Outputs   []string `json:"outputs"`
	Error     string   `json:"error,omitempty"`
	CreatedAt int64    `json:"created_at"` //unix milliseconds
	UpdatedAt int64    `json:"updated_at"`
}

//RunRecorder receives the state of a run while it is analysed
type RunRecorder interface {
	SetStatus(id, status, errMsg string) error
	SetProgress(id string, frames int) error
	SetOutputs(id string, outputs []string) error
}

//Store is the runs database
type Store struct {
	*sql.DB
}

//Open opens (and creates when missing) the database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id                TEXT PRIMARY KEY,
			source            TEXT NOT NULL,
			status            TEXT NOT NULL,
			frames            BIGINT NOT NULL DEFAULT 0,
			outputs           TEXT NOT NULL DEFAULT '[]',
			error             TEXT NOT NULL DEFAULT '',
			created_at        BIGINT NOT NULL,
			updated_at        BIGINT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create runs table: %w", err)
	}

	return &Store{db}, nil
}

func now() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

//CreateRun registers a new pending run of source
func (s *Store) CreateRun(source string) (*Run, error) {
	ts := now()
	run := Run{
		ID:        uuid.New().String(),
		Source:    source,
		Status:    utils.RunPending,
		Outputs:   []string{},
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	_, err := s.DB.Exec(`INSERT INTO runs (id, source, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Status, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return &run, nil
}

func (s *Store) update(id, query string, args ...interface{}) error {
	args = append(args, now(), id)
	res, err := s.DB.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

//SetStatus changes the status of a run, errMsg is kept for failed runs
func (s *Store) SetStatus(id, status, errMsg string) error {
	return s.update(id, `UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`, status, errMsg)
}

//SetProgress records the number of frames analysed so far
func (s *Store) SetProgress(id string, frames int) error {
	return s.update(id, `UPDATE runs SET frames = ?, updated_at = ? WHERE id = ?`, frames)
}

//SetOutputs records the names of the videos produced by a run
func (s *Store) SetOutputs(id string, outputs []string) error {
	if outputs == nil {
		outputs = []string{}
	}
	encoded, err := json.Marshal(outputs)
	if err != nil {
		return err
	}
	return s.update(id, `UPDATE runs SET outputs = ?, updated_at = ? WHERE id = ?`, string(encoded))
}

const selectRuns = `SELECT id, source, status, frames, outputs, error, created_at, updated_at FROM runs`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var outputs string
	if err := row.Scan(&run.ID, &run.Source, &run.Status, &run.Frames, &outputs, &run.Error, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(outputs), &run.Outputs); err != nil {
		return nil, fmt.Errorf("failed to decode outputs of run %s: %w", run.ID, err)
	}
	return &run, nil
}

//GetRun returns the run with given id
func (s *Store) GetRun(id string) (*Run, error) {
	run, err := scanRun(s.DB.QueryRow(selectRuns+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return run, nil
}

//ListRuns returns every run, most recent first
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.DB.Query(selectRuns + ` ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}
