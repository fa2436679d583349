// Package store is the persistent state machine for application records.
// It is the single source of truth for lifecycle state: one row per job id,
// with an append-only state history log.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"jobagent/internal/job"
)

const schema = `
CREATE TABLE IF NOT EXISTS applications (
	job_id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	description TEXT,
	source_url TEXT NOT NULL,
	platform_hint TEXT,
	score REAL,
	matched_skills TEXT,
	scored_at DATETIME,
	state TEXT NOT NULL DEFAULT 'found',
	last_error TEXT,
	insight TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_applications_state ON applications(state);

CREATE TABLE IF NOT EXISTS state_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id TEXT NOT NULL REFERENCES applications(job_id),
	state TEXT NOT NULL,
	reason TEXT,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_state_history_job ON state_history(job_id);
`

// Store is a SQLite-backed job store. Writes on the same job id serialize
// through a per-key lock so the state history is linearizable; distinct
// ids may be written concurrently.
type Store struct {
	db   *sql.DB
	path string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open creates or opens the store at the given path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring database: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{
		db:    db,
		path:  path,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// lock acquires the per-job-id write lock and returns its release func.
func (s *Store) lock(jobID string) func() {
	s.mu.Lock()
	l, ok := s.locks[jobID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[jobID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// UpsertScored persists a scored job. A previously unseen job id is
// created in state "found" with an initial history entry; an existing
// record has its score and description metadata refreshed only, lifecycle
// state untouched.
func (s *Store) UpsertScored(ctx context.Context, sj job.ScoredJob) (*job.ApplicationRecord, error) {
	if sj.ID == "" {
		return nil, fmt.Errorf("scored job has no id")
	}

	unlock := s.lock(sj.ID)
	defer unlock()

	matched, err := json.Marshal(sj.MatchedSkills)
	if err != nil {
		return nil, fmt.Errorf("encoding matched skills: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM applications WHERE job_id = ?`, sj.ID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking job existence: %w", err)
	}

	if exists == 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO applications
				(job_id, title, company, description, source_url, platform_hint,
				 score, matched_skills, scored_at, state, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sj.ID, sj.Title, sj.Company, sj.Description, sj.SourceURL, sj.PlatformHint,
			sj.Score, string(matched), sj.ScoredAt, job.StateFound, now, now,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting application: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO state_history (job_id, state, reason, created_at)
			VALUES (?, ?, ?, ?)`,
			sj.ID, job.StateFound, "discovered and scored", now,
		)
		if err != nil {
			return nil, fmt.Errorf("recording initial state: %w", err)
		}
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE applications
			SET description = ?, score = ?, matched_skills = ?, scored_at = ?, updated_at = ?
			WHERE job_id = ?`,
			sj.Description, sj.Score, string(matched), sj.ScoredAt, now, sj.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("refreshing application: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing upsert: %w", err)
	}

	return s.get(ctx, sj.ID)
}

// Transition moves a record along one edge of the lifecycle table,
// appending to the state history atomically. An illegal edge fails with
// *job.InvalidTransitionError and leaves the record unchanged; an unknown
// id fails with *job.NotFoundError.
func (s *Store) Transition(ctx context.Context, jobID string, target job.State, reason string) (*job.ApplicationRecord, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("unknown target state: %q", target)
	}

	unlock := s.lock(jobID)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transition: %w", err)
	}
	defer tx.Rollback()

	current, err := currentState(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}

	if !current.CanTransitionTo(target) {
		return nil, &job.InvalidTransitionError{JobID: jobID, From: current, To: target}
	}

	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx, `
		UPDATE applications SET state = ?, updated_at = ? WHERE job_id = ?`,
		target, now, jobID,
	); err != nil {
		return nil, fmt.Errorf("updating state: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO state_history (job_id, state, reason, created_at)
		VALUES (?, ?, ?, ?)`,
		jobID, target, reason, now,
	); err != nil {
		return nil, fmt.Errorf("appending state history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transition: %w", err)
	}

	return s.get(ctx, jobID)
}

// Annotate appends a history entry bearing the record's current state.
// Used for outcomes that must be recorded distinctly without moving the
// state machine, such as "form filled, waiting for manual submit".
func (s *Store) Annotate(ctx context.Context, jobID, reason string) (*job.ApplicationRecord, error) {
	unlock := s.lock(jobID)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning annotate: %w", err)
	}
	defer tx.Rollback()

	current, err := currentState(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO state_history (job_id, state, reason, created_at)
		VALUES (?, ?, ?, ?)`,
		jobID, current, reason, time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("appending annotation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing annotate: %w", err)
	}

	return s.get(ctx, jobID)
}

// SetLastError records the most recent automation error for a job.
func (s *Store) SetLastError(ctx context.Context, jobID, message string) error {
	unlock := s.lock(jobID)
	defer unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET last_error = ?, updated_at = ? WHERE job_id = ?`,
		message, time.Now().UTC(), jobID,
	)
	if err != nil {
		return fmt.Errorf("setting last error: %w", err)
	}
	return requireRow(res, jobID)
}

// AttachInsight stores advisory LLM text on the record. Advisory only: it
// never influences score or state.
func (s *Store) AttachInsight(ctx context.Context, jobID, text string) error {
	unlock := s.lock(jobID)
	defer unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET insight = ?, updated_at = ? WHERE job_id = ?`,
		text, time.Now().UTC(), jobID,
	)
	if err != nil {
		return fmt.Errorf("attaching insight: %w", err)
	}
	return requireRow(res, jobID)
}

// Get loads a single record with its full state history.
func (s *Store) Get(ctx context.Context, jobID string) (*job.ApplicationRecord, error) {
	return s.get(ctx, jobID)
}

// Filter narrows a Query. Zero values mean "any".
type Filter struct {
	State    job.State
	MinScore float64
	Platform string
}

// Query returns records matching the filter, sorted by score descending
// with a stable scored_at ascending tie-break. Unscored records sort last.
func (s *Store) Query(ctx context.Context, f Filter) ([]*job.ApplicationRecord, error) {
	query := `
		SELECT job_id, title, company, description, source_url, platform_hint,
		       score, matched_skills, scored_at, state, last_error, insight
		FROM applications`

	var clauses []string
	var args []any
	if f.State != "" {
		clauses = append(clauses, "state = ?")
		args = append(args, f.State)
	}
	if f.MinScore > 0 {
		clauses = append(clauses, "score >= ?")
		args = append(args, f.MinScore)
	}
	if f.Platform != "" {
		clauses = append(clauses, "platform_hint = ?")
		args = append(args, f.Platform)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY score IS NULL, score DESC, scored_at ASC, job_id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying applications: %w", err)
	}
	defer rows.Close()

	var records []*job.ApplicationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating applications: %w", err)
	}

	for _, rec := range records {
		history, err := s.history(ctx, rec.JobID)
		if err != nil {
			return nil, err
		}
		rec.History = history
	}

	return records, nil
}

func (s *Store) get(ctx context.Context, jobID string) (*job.ApplicationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT job_id, title, company, description, source_url, platform_hint,
		       score, matched_skills, scored_at, state, last_error, insight
		FROM applications WHERE job_id = ?`, jobID)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, &job.NotFoundError{JobID: jobID}
	}
	if err != nil {
		return nil, err
	}

	rec.History, err = s.history(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) history(ctx context.Context, jobID string) ([]job.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT state, reason, created_at
		FROM state_history WHERE job_id = ? ORDER BY id ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("querying state history: %w", err)
	}
	defer rows.Close()

	var history []job.HistoryEntry
	for rows.Next() {
		var entry job.HistoryEntry
		var reason sql.NullString
		if err := rows.Scan(&entry.State, &reason, &entry.At); err != nil {
			return nil, fmt.Errorf("scanning state history: %w", err)
		}
		entry.Reason = reason.String
		history = append(history, entry)
	}
	return history, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*job.ApplicationRecord, error) {
	var rec job.ApplicationRecord
	var description, platformHint, matched, lastErr, insight sql.NullString
	var score sql.NullFloat64
	var scoredAt sql.NullTime

	err := row.Scan(
		&rec.JobID, &rec.Title, &rec.Company, &description, &rec.SourceURL, &platformHint,
		&score, &matched, &scoredAt, &rec.State, &lastErr, &insight,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning application: %w", err)
	}

	rec.Description = description.String
	rec.PlatformHint = platformHint.String
	rec.LastError = lastErr.String
	rec.Insight = insight.String

	if score.Valid {
		v := score.Float64
		rec.Score = &v
	}
	if scoredAt.Valid {
		at := scoredAt.Time.UTC()
		rec.ScoredAt = &at
	}
	if matched.Valid && matched.String != "" {
		if err := json.Unmarshal([]byte(matched.String), &rec.MatchedSkills); err != nil {
			return nil, fmt.Errorf("decoding matched skills: %w", err)
		}
	}

	return &rec, nil
}

func currentState(ctx context.Context, tx *sql.Tx, jobID string) (job.State, error) {
	var state job.State
	err := tx.QueryRowContext(ctx, `SELECT state FROM applications WHERE job_id = ?`, jobID).Scan(&state)
	if err == sql.ErrNoRows {
		return "", &job.NotFoundError{JobID: jobID}
	}
	if err != nil {
		return "", fmt.Errorf("reading current state: %w", err)
	}
	return state, nil
}

func requireRow(res sql.Result, jobID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &job.NotFoundError{JobID: jobID}
	}
	return nil
}
