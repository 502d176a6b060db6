package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobapplicator/internal/model"
)

var (
	_ model.SeenStore      = (*SQLiteStore)(nil)
	_ model.ApplicationLog = (*SQLiteStore)(nil)
)

// SQLiteStore keeps the seen-cache and the application history in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the seen_jobs and applications tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS seen_jobs (
			url        TEXT PRIMARY KEY,
			first_seen DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id          TEXT PRIMARY KEY,
			url         TEXT NOT NULL,
			title       TEXT NOT NULL,
			board       TEXT NOT NULL,
			posted_at   DATETIME,
			summary     TEXT NOT NULL DEFAULT '',
			score       REAL NOT NULL DEFAULT 0,
			mood_tag    TEXT NOT NULL DEFAULT '',
			letter_path TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL,
			followup_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_followup ON applications (followup_at)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// HasSeen returns true if the given job URL has already been recorded.
func (s *SQLiteStore) HasSeen(url string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM seen_jobs WHERE url = ?", url).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", url, err)
	}
	return true, nil
}

// MarkSeen records a job URL as seen. If it already exists the call is a no-op.
func (s *SQLiteStore) MarkSeen(url string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO seen_jobs (url) VALUES (?)", url)
	if err != nil {
		return fmt.Errorf("marking job %s as seen: %w", url, err)
	}
	return nil
}

// Cleanup deletes seen-job entries older than the given duration.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan)
	_, err := s.db.Exec("DELETE FROM seen_jobs WHERE first_seen < ?", cutoff.Format(sqliteTime))
	if err != nil {
		return fmt.Errorf("cleaning up seen jobs older than %v: %w", olderThan, err)
	}
	return nil
}

// sqliteTime matches CURRENT_TIMESTAMP so string comparison orders correctly.
const sqliteTime = "2006-01-02 15:04:05"

// RecordApplication stores a drafted application.
func (s *SQLiteStore) RecordApplication(app model.Application) error {
	_, err := s.db.Exec(`INSERT INTO applications
		(id, url, title, board, posted_at, summary, score, mood_tag, letter_path, created_at, followup_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.Job.URL, app.Job.Title, app.Job.Board,
		app.Job.PostedAt.UTC().Format(sqliteTime), app.Job.Summary,
		app.Score, app.MoodTag, app.LetterPath,
		app.CreatedAt.UTC().Format(sqliteTime), app.FollowupAt.UTC().Format(sqliteTime),
	)
	if err != nil {
		return fmt.Errorf("recording application for %s: %w", app.Job.URL, err)
	}
	return nil
}

// ListApplications returns all recorded applications, newest first.
func (s *SQLiteStore) ListApplications() ([]model.Application, error) {
	return s.queryApplications(`SELECT id, url, title, board, posted_at, summary, score, mood_tag, letter_path, created_at, followup_at
		FROM applications ORDER BY created_at DESC, rowid DESC`)
}

// DueFollowups returns applications whose follow-up time is at or before now,
// oldest first.
func (s *SQLiteStore) DueFollowups(now time.Time) ([]model.Application, error) {
	return s.queryApplications(`SELECT id, url, title, board, posted_at, summary, score, mood_tag, letter_path, created_at, followup_at
		FROM applications WHERE followup_at <= ? ORDER BY followup_at ASC`, now.UTC().Format(sqliteTime))
}

func (s *SQLiteStore) queryApplications(query string, args ...any) ([]model.Application, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying applications: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		var (
			app                       model.Application
			posted, created, followup string
		)
		if err := rows.Scan(&app.ID, &app.Job.URL, &app.Job.Title, &app.Job.Board, &posted, &app.Job.Summary,
			&app.Score, &app.MoodTag, &app.LetterPath, &created, &followup); err != nil {
			return nil, fmt.Errorf("scanning application: %w", err)
		}
		app.Job.PostedAt = parseSQLiteTime(posted)
		app.CreatedAt = parseSQLiteTime(created)
		app.FollowupAt = parseSQLiteTime(followup)
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating applications: %w", err)
	}
	return apps, nil
}

func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{sqliteTime, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
