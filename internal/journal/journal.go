/*
MIT License

Copyright (c) 2025 Yuval Adar <adary@adary.org>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package journal keeps a SQLite history of protected prompts. Secrets never
// reach it: only how each prompt was shown and dismissed.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/adaryorg/securedesk/internal/isolate"
	"github.com/adaryorg/securedesk/internal/logging"
)

// Entry is one recorded prompt.
type Entry struct {
	ID               string    `json:"id"`
	Started          time.Time `json:"started"`
	Finished         time.Time `json:"finished"`
	Path             string    `json:"path"`
	Outcome          string    `json:"outcome"`
	Takeovers        int       `json:"takeovers"`
	ClipboardCleared bool      `json:"clipboard_cleared"`
	Failure          string    `json:"failure,omitempty"`
}

func (e Entry) Duration() time.Duration {
	return e.Finished.Sub(e.Started)
}

// Stats summarises the journal.
type Stats struct {
	Total           int
	ByPath          map[string]int
	ByOutcome       map[string]int
	Takeovers       int
	ClipboardClears int
}

type Journal struct {
	db         *sql.DB
	maxEntries int
}

// Open opens or creates the journal database at path. maxEntries bounds how
// many prompts are kept; zero or less keeps everything.
func Open(path string, maxEntries int) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	j := &Journal{db: db, maxEntries: maxEntries}
	if err := j.initSchema(); err != nil {
		j.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return j, nil
}

func (j *Journal) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS prompts (
		id TEXT PRIMARY KEY,
		started DATETIME NOT NULL,
		finished DATETIME NOT NULL,
		path TEXT NOT NULL,
		outcome TEXT NOT NULL,
		takeovers INTEGER NOT NULL DEFAULT 0,
		clipboard_cleared BOOLEAN NOT NULL DEFAULT FALSE,
		failure TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_started ON prompts(started);
	`

	_, err := j.db.Exec(query)
	return err
}

// Observe records r, logging instead of failing. It makes the journal an
// isolate.Observer.
func (j *Journal) Observe(r isolate.Report) {
	if err := j.Add(r); err != nil {
		logging.Error("Failed to record prompt %s in journal: %v", r.ID, err)
	}
}

// Add records r and prunes old entries.
func (j *Journal) Add(r isolate.Report) error {
	query := `INSERT OR REPLACE INTO prompts
		(id, started, finished, path, outcome, takeovers, clipboard_cleared, failure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := j.db.Exec(query,
		r.ID,
		r.Started.UTC(),
		r.Finished.UTC(),
		string(r.Path),
		r.Outcome.String(),
		r.Takeovers,
		r.ClipboardCleared,
		r.Failure,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prompt: %w", err)
	}

	_, err = j.Prune()
	return err
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	query := `SELECT id, started, finished, path, outcome, takeovers, clipboard_cleared, failure
		FROM prompts ORDER BY started DESC, rowid DESC LIMIT ?`
	rows, err := j.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Started, &e.Finished, &e.Path, &e.Outcome,
			&e.Takeovers, &e.ClipboardCleared, &e.Failure); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (j *Journal) Stats() (Stats, error) {
	stats := Stats{
		ByPath:    make(map[string]int),
		ByOutcome: make(map[string]int),
	}

	err := j.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(takeovers), 0),
		COALESCE(SUM(CASE WHEN clipboard_cleared THEN 1 ELSE 0 END), 0) FROM prompts`).
		Scan(&stats.Total, &stats.Takeovers, &stats.ClipboardClears)
	if err != nil {
		return stats, fmt.Errorf("failed to get totals: %w", err)
	}

	if err := j.countBy("path", stats.ByPath); err != nil {
		return stats, err
	}
	if err := j.countBy("outcome", stats.ByOutcome); err != nil {
		return stats, err
	}

	return stats, nil
}

// countBy fills counts grouped by column, which must be a trusted name.
func (j *Journal) countBy(column string, counts map[string]int) error {
	rows, err := j.db.Query(fmt.Sprintf("SELECT %s, COUNT(*) FROM prompts GROUP BY %s", column, column))
	if err != nil {
		return fmt.Errorf("failed to get %s stats: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", column, err)
		}
		counts[key] = count
	}
	return rows.Err()
}

// Prune keeps only the newest maxEntries prompts and returns how many were removed.
func (j *Journal) Prune() (int64, error) {
	if j.maxEntries <= 0 {
		return 0, nil
	}

	result, err := j.db.Exec(`
		DELETE FROM prompts
		WHERE id NOT IN (
			SELECT id FROM prompts
			ORDER BY started DESC, rowid DESC
			LIMIT ?
		)`, j.maxEntries)
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}
	return result.RowsAffected()
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}
