// Package store archives parse and crawl runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ccollicutt/talklog/pkg/news"
	"github.com/ccollicutt/talklog/pkg/tagger"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS runs (
    run_id      TEXT PRIMARY KEY,
    kind        TEXT NOT NULL,
    config_file TEXT NOT NULL DEFAULT '',
    sources     INTEGER NOT NULL DEFAULT 0,
    row_count   INTEGER NOT NULL DEFAULT 0,
    failures    INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    run_id    TEXT NOT NULL,
    seq       INTEGER NOT NULL,
    date      TEXT NOT NULL,
    time      TEXT NOT NULL,
    sender    TEXT NOT NULL,
    message   TEXT NOT NULL,
    category  TEXT NOT NULL DEFAULT '',
    publisher TEXT NOT NULL DEFAULT '',
    subject   TEXT NOT NULL DEFAULT '',
    complaint INTEGER NOT NULL DEFAULT 0,
    source    TEXT NOT NULL DEFAULT '',
    line      INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS articles (
    run_id              TEXT NOT NULL,
    seq                 INTEGER NOT NULL,
    keyword             TEXT NOT NULL,
    publisher           TEXT NOT NULL DEFAULT '',
    category            TEXT NOT NULL DEFAULT '',
    date                TEXT NOT NULL DEFAULT '',
    title               TEXT NOT NULL,
    url                 TEXT NOT NULL,
    summary             TEXT NOT NULL DEFAULT '',
    press               TEXT NOT NULL DEFAULT '',
    publisher_mentioned INTEGER NOT NULL DEFAULT 0,
    textbook_mentioned  INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS messages_category ON messages (run_id, category);

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// SchemaVersion is recorded in the meta table.
const SchemaVersion = "1"

// ErrRunExists is returned when a run id is saved twice.
var ErrRunExists = errors.New("run already archived")

// Run is one archived invocation.
type Run struct {
	ID         string
	Kind       string
	ConfigFile string
	Sources    int
	Rows       int
	Failures   int
	CreatedAt  time.Time
}

// Store wraps the archive database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the archive at path, creating parent directories.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps PRAGMAs and transactions on one handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", SchemaVersion); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("write schema version: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the version stored in the meta table.
func (s *Store) SchemaVersion(ctx context.Context) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'schema_version'").Scan(&v)
	return v, err
}

// SaveRun records a run header.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertRun(ctx, tx, run)
	})
}

// ArchiveRun records a run header together with its rows in one transaction,
// so a rejected run leaves no rows behind.
func (s *Store) ArchiveRun(ctx context.Context, run Run, messages []tagger.TaggedMessage, articles []news.Article) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertRun(ctx, tx, run); err != nil {
			return err
		}
		if err := insertMessages(ctx, tx, run.ID, messages); err != nil {
			return err
		}
		return insertArticles(ctx, tx, run.ID, articles)
	})
}

// GetRun loads a run header, or nil when id is unknown.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	var created string
	err := s.db.QueryRowContext(ctx,
		"SELECT run_id, kind, config_file, sources, row_count, failures, created_at FROM runs WHERE run_id = ?", id,
	).Scan(&r.ID, &r.Kind, &r.ConfigFile, &r.Sources, &r.Rows, &r.Failures, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return nil, fmt.Errorf("run %s: parsing created_at: %w", id, err)
	}
	return &r, nil
}

// SaveMessages stores the tagged messages of a run in one transaction.
func (s *Store) SaveMessages(ctx context.Context, runID string, messages []tagger.TaggedMessage) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertMessages(ctx, tx, runID, messages)
	})
}

// SaveArticles stores the articles of a run in one transaction.
func (s *Store) SaveArticles(ctx context.Context, runID string, articles []news.Article) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertArticles(ctx, tx, runID, articles)
	})
}

func insertRun(ctx context.Context, tx *sql.Tx, run Run) error {
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE run_id = ?", run.ID).Scan(&n); err != nil {
		return fmt.Errorf("check run: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", ErrRunExists, run.ID)
	}

	created := run.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := tx.ExecContext(ctx,
		"INSERT INTO runs (run_id, kind, config_file, sources, row_count, failures, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.Kind, run.ConfigFile, run.Sources, run.Rows, run.Failures, created.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func insertMessages(ctx context.Context, tx *sql.Tx, runID string, messages []tagger.TaggedMessage) error {
	if len(messages) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (run_id, seq, date, time, sender, message, category, publisher, subject, complaint, source, line)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range messages {
		if _, err := stmt.ExecContext(ctx,
			runID, i, m.Date.String(), m.Time.String(), m.Sender, m.Message,
			m.Category, m.Publisher, m.Subject, boolInt(m.Complaint), m.Source, m.Line,
		); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}
	return nil
}

func insertArticles(ctx context.Context, tx *sql.Tx, runID string, articles []news.Article) error {
	if len(articles) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO articles (run_id, seq, keyword, publisher, category, date, title, url, summary, press, publisher_mentioned, textbook_mentioned)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, a := range articles {
		if _, err := stmt.ExecContext(ctx,
			runID, i, a.Keyword, a.Publisher, a.Category, a.Date, a.Title, a.URL, a.Summary, a.Press,
			boolInt(a.PublisherMentioned), boolInt(a.TextbookMentioned),
		); err != nil {
			return fmt.Errorf("insert article %d: %w", i, err)
		}
	}
	return nil
}

// MessageCount returns the number of archived messages across all runs.
func (s *Store) MessageCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

// ArticleCount returns the number of archived articles across all runs.
func (s *Store) ArticleCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&n)
	return n, err
}

// CategoryCounts returns message counts per category for a run.
func (s *Store) CategoryCounts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, COUNT(*) FROM messages WHERE run_id = ? GROUP BY category", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
