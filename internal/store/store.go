// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists archived trial summaries in a local SQLite
// database with a full-text index over titles, conditions, and
// interventions. The archive holds trials the user chose to keep;
// registry responses are never written here.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dmarkovic/trialscope/pkg/types"
)

const dbFile = "trials.db"

// Store manages the trial archive SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
	now        func() time.Time
}

// NewStore opens or creates the archive database at
// archiveDir/trials.db, creating the schema if it does not exist.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	dir := cfg.ArchiveDir
	if dir == "" {
		dir = "archive"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults, now: time.Now}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS trials (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			nct_id TEXT NOT NULL UNIQUE,
			title TEXT,
			status TEXT,
			phases TEXT,
			study_type TEXT,
			conditions TEXT,
			interventions TEXT,
			sponsor TEXT,
			sponsor_class TEXT,
			enrollment INTEGER,
			start_date TEXT,
			completion_date TEXT,
			locations TEXT,
			has_results INTEGER,
			archived_at TEXT NOT NULL,
			note TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trials_status ON trials(status)`,
		`CREATE INDEX IF NOT EXISTS idx_trials_sponsor ON trials(sponsor)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='trials_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE trials_fts USING fts5(title, conditions, interventions, sponsor, content=trials, content_rowid=rowid)`,
			`CREATE TRIGGER trials_ai AFTER INSERT ON trials BEGIN
				INSERT INTO trials_fts(rowid, title, conditions, interventions, sponsor)
				VALUES (new.rowid, new.title, new.conditions, new.interventions, new.sponsor);
			END`,
			`CREATE TRIGGER trials_ad AFTER DELETE ON trials BEGIN
				INSERT INTO trials_fts(trials_fts, rowid, title, conditions, interventions, sponsor)
				VALUES ('delete', old.rowid, old.title, old.conditions, old.interventions, old.sponsor);
			END`,
			`CREATE TRIGGER trials_au AFTER UPDATE ON trials BEGIN
				INSERT INTO trials_fts(trials_fts, rowid, title, conditions, interventions, sponsor)
				VALUES ('delete', old.rowid, old.title, old.conditions, old.interventions, old.sponsor);
				INSERT INTO trials_fts(rowid, title, conditions, interventions, sponsor)
				VALUES (new.rowid, new.title, new.conditions, new.interventions, new.sponsor);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// ArchivedTrial is a stored trial summary with archive metadata.
type ArchivedTrial struct {
	types.StudySummary `yaml:",inline"`

	ArchivedAt time.Time `json:"archived_at" yaml:"archived_at"`
	Note       string    `json:"note,omitempty" yaml:"note,omitempty"`
}

// Archive upserts trial summaries into the archive. Re-archiving an
// NCT ID replaces the stored record and refreshes its timestamp.
func (s *Store) Archive(ctx context.Context, trials []types.StudySummary, note string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trials (nct_id, title, status, phases, study_type, conditions,
			interventions, sponsor, sponsor_class, enrollment, start_date,
			completion_date, locations, has_results, archived_at, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(nct_id) DO UPDATE SET
			title=excluded.title, status=excluded.status, phases=excluded.phases,
			study_type=excluded.study_type, conditions=excluded.conditions,
			interventions=excluded.interventions, sponsor=excluded.sponsor,
			sponsor_class=excluded.sponsor_class, enrollment=excluded.enrollment,
			start_date=excluded.start_date, completion_date=excluded.completion_date,
			locations=excluded.locations, has_results=excluded.has_results,
			archived_at=excluded.archived_at, note=excluded.note`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	archivedAt := s.now().UTC().Format(time.RFC3339)
	for _, t := range trials {
		if t.NCTID == "" {
			return fmt.Errorf("archiving trial %q: missing NCT ID", t.Title)
		}
		phasesJSON, _ := json.Marshal(t.Phases)
		conditionsJSON, _ := json.Marshal(t.Conditions)
		interventionsJSON, _ := json.Marshal(t.Interventions)
		locationsJSON, _ := json.Marshal(t.Locations)

		_, err := stmt.ExecContext(ctx,
			t.NCTID, t.Title, t.Status, string(phasesJSON), t.StudyType,
			string(conditionsJSON), string(interventionsJSON),
			t.Sponsor, t.SponsorClass, t.Enrollment,
			t.StartDate, t.CompletionDate, string(locationsJSON),
			boolToInt(t.HasResults), archivedAt, note,
		)
		if err != nil {
			return fmt.Errorf("archiving trial %s: %w", t.NCTID, err)
		}
	}

	return tx.Commit()
}

// Get returns one archived trial by NCT ID, or nil if absent.
func (s *Store) Get(ctx context.Context, nctID string) (*ArchivedTrial, error) {
	rows, err := s.queryTrials(ctx, selectColumns+` FROM trials t WHERE nct_id = ?`, nctID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ListOptions filters archive listings.
type ListOptions struct {
	// Query is an FTS5 match over title, conditions, interventions,
	// and sponsor.
	Query string

	// Status filters on overall status.
	Status string

	// Sponsor filters on exact lead sponsor name.
	Sponsor string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// List returns archived trials, newest first, or FTS-ranked when a
// query string is given.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]ArchivedTrial, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(selectColumns)
		qb.WriteString(` FROM trials_fts JOIN trials t ON t.rowid = trials_fts.rowid WHERE trials_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(selectColumns)
		qb.WriteString(` FROM trials t WHERE 1=1`)
	}

	if opts.Status != "" {
		qb.WriteString(` AND t.status = ?`)
		args = append(args, opts.Status)
	}
	if opts.Sponsor != "" {
		qb.WriteString(` AND t.sponsor = ?`)
		args = append(args, opts.Sponsor)
	}

	if useFTS {
		qb.WriteString(` ORDER BY trials_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY t.archived_at DESC, t.nct_id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	return s.queryTrials(ctx, qb.String(), args...)
}

// Count returns the number of archived trials.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM trials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting trials: %w", err)
	}
	return n, nil
}

// Delete removes one archived trial. It reports whether a record was
// removed.
func (s *Store) Delete(ctx context.Context, nctID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trials WHERE nct_id = ?`, nctID)
	if err != nil {
		return false, fmt.Errorf("deleting trial %s: %w", nctID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting trial %s: %w", nctID, err)
	}
	return n > 0, nil
}

// Prune removes archived trials older than the cutoff and returns how
// many were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-olderThan).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `DELETE FROM trials WHERE archived_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning archive: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning archive: %w", err)
	}
	return int(n), nil
}

const selectColumns = `SELECT t.nct_id, t.title, t.status, t.phases, t.study_type,
	t.conditions, t.interventions, t.sponsor, t.sponsor_class, t.enrollment,
	t.start_date, t.completion_date, t.locations, t.has_results,
	t.archived_at, t.note`

func (s *Store) queryTrials(ctx context.Context, query string, args ...any) ([]ArchivedTrial, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var results []ArchivedTrial
	for rows.Next() {
		var (
			at ArchivedTrial

			phasesJSON        sql.NullString
			conditionsJSON    sql.NullString
			interventionsJSON sql.NullString
			locationsJSON     sql.NullString
			hasResults        int
			archivedAt        string
			note              sql.NullString
		)

		if err := rows.Scan(
			&at.NCTID, &at.Title, &at.Status, &phasesJSON, &at.StudyType,
			&conditionsJSON, &interventionsJSON, &at.Sponsor, &at.SponsorClass,
			&at.Enrollment, &at.StartDate, &at.CompletionDate, &locationsJSON,
			&hasResults, &archivedAt, &note,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if phasesJSON.Valid {
			json.Unmarshal([]byte(phasesJSON.String), &at.Phases)
		}
		if conditionsJSON.Valid {
			json.Unmarshal([]byte(conditionsJSON.String), &at.Conditions)
		}
		if interventionsJSON.Valid {
			json.Unmarshal([]byte(interventionsJSON.String), &at.Interventions)
		}
		if locationsJSON.Valid {
			json.Unmarshal([]byte(locationsJSON.String), &at.Locations)
		}
		at.HasResults = hasResults != 0
		if ts, err := time.Parse(time.RFC3339, archivedAt); err == nil {
			at.ArchivedAt = ts
		}
		if note.Valid {
			at.Note = note.String
		}

		results = append(results, at)
	}

	return results, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
