// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps a SQLite history of every research result built
// from the upstream providers. Operators list, search and export it. The
// orchestrator only ever writes to it; cache lookups never read it.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const defaultLimit = 20

// ErrNotFound is returned by Get when no entry has the requested ID.
var ErrNotFound = errors.New("archive entry not found")

// Entry is one archived research result.
type Entry struct {
	ID               string      `json:"id" yaml:"id"`
	CacheKey         string      `json:"cacheKey" yaml:"cache_key"`
	Topic            string      `json:"topic" yaml:"topic"`
	Depth            types.Depth `json:"depth" yaml:"depth"`
	CombinedInsights string      `json:"combinedInsights" yaml:"combined_insights"`
	Analysis         *string     `json:"analysis" yaml:"analysis,omitempty"`
	Sources          []string    `json:"sources" yaml:"sources"`
	CreatedAt        time.Time   `json:"createdAt" yaml:"created_at"`
}

// Store manages the archive database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the archive database at cfg.Path, creating
// its parent directory and schema as needed.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("archive path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			cache_key TEXT NOT NULL,
			topic TEXT NOT NULL,
			depth TEXT NOT NULL,
			combined_insights TEXT NOT NULL,
			analysis TEXT,
			sources TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_cache_key ON results(cache_key)`,
		`CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a freshly built result under its cache key. Recording the
// same result ID twice replaces the earlier row.
func (s *Store) Record(ctx context.Context, cacheKey string, result types.ResearchResult) error {
	sources := result.Sources
	if sources == nil {
		sources = []string{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshaling sources: %w", err)
	}

	var analysis sql.NullString
	if result.Analysis != nil {
		analysis = sql.NullString{String: *result.Analysis, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO results (id, cache_key, topic, depth, combined_insights, analysis, sources, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, cacheKey, result.Topic, string(result.Depth),
		result.CombinedInsights, analysis, string(sourcesJSON),
		result.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording result %s: %w", result.ID, err)
	}
	return nil
}

const selectColumns = `SELECT id, cache_key, topic, depth, combined_insights, analysis, sources, created_at FROM results`

// List returns the most recent entries, newest first. A non-positive limit
// selects the default.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Search returns entries whose topic or combined insights contain term,
// ignoring case, newest first.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE lower(topic) LIKE ? ESCAPE '\' OR lower(combined_insights) LIKE ? ESCAPE '\'
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching results: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Get returns the entry with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE id = ?`, id)
	if err != nil {
		return Entry{}, fmt.Errorf("querying result %s: %w", id, err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return entries[0], nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := []Entry{}
	for rows.Next() {
		var (
			e           Entry
			depth       string
			analysis    sql.NullString
			sourcesJSON string
			createdAt   string
		)
		if err := rows.Scan(&e.ID, &e.CacheKey, &e.Topic, &depth, &e.CombinedInsights, &analysis, &sourcesJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		e.Depth = types.Depth(depth)
		if analysis.Valid {
			a := analysis.String
			e.Analysis = &a
		}
		if err := json.Unmarshal([]byte(sourcesJSON), &e.Sources); err != nil {
			return nil, fmt.Errorf("decoding sources for %s: %w", e.ID, err)
		}
		if e.Sources == nil {
			e.Sources = []string{}
		}
		t, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at for %s: %w", e.ID, err)
		}
		e.CreatedAt = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
