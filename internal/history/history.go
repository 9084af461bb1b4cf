package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("history: record not found")

// Record is one analysis history row.
type Record struct {
	ID             int64
	Identifier     string
	DisplayName    string
	ReportName     string
	Timestamp      string // ISO-8601
	MarkdownPath   string
	HTMLPath       string
	Succeeded      bool
	ErrorMessage   string
	ElapsedSeconds float64
}

// Stats aggregates the whole history.
type Stats struct {
	Total          int
	Succeeded      int
	Failed         int
	AvgElapsedSecs float64
}

// Store is a SQLite-backed history log. Safe for use from a single
// process; the busy-timeout pragma covers concurrent CLI invocations.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS report_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	identifier TEXT NOT NULL,
	display_name TEXT NOT NULL,
	report_name TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	markdown_path TEXT NOT NULL DEFAULT '',
	html_path TEXT NOT NULL DEFAULT '',
	succeeded INTEGER NOT NULL DEFAULT 1,
	error_message TEXT NOT NULL DEFAULT '',
	elapsed_seconds REAL NOT NULL DEFAULT 0.0
);
CREATE INDEX IF NOT EXISTS idx_history_identifier ON report_history(identifier);
CREATE INDEX IF NOT EXISTS idx_history_timestamp ON report_history(timestamp DESC);
`

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
}

// Open creates or opens the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Add inserts a record and returns its id.
func (s *Store) Add(r Record) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO report_history
		(identifier, display_name, report_name, timestamp, markdown_path,
		 html_path, succeeded, error_message, elapsed_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Identifier, r.DisplayName, r.ReportName, r.Timestamp,
		r.MarkdownPath, r.HTMLPath, boolToInt(r.Succeeded),
		r.ErrorMessage, r.ElapsedSeconds)
	if err != nil {
		return 0, fmt.Errorf("inserting history record: %w", err)
	}
	return res.LastInsertId()
}

const selectCols = `id, identifier, display_name, report_name, timestamp,
	markdown_path, html_path, succeeded, error_message, elapsed_seconds`

// Get returns the record with the given id, or ErrNotFound.
func (s *Store) Get(id int64) (Record, error) {
	row := s.db.QueryRow(
		`SELECT `+selectCols+` FROM report_history WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

// ByIdentifier returns all records for one identifier, most recent first.
func (s *Store) ByIdentifier(identifier string) ([]Record, error) {
	return s.query(
		`SELECT `+selectCols+` FROM report_history
		 WHERE identifier = ? ORDER BY timestamp DESC, id DESC`, identifier)
}

// Recent returns the latest records, most recent first. limit <= 0 means
// no limit.
func (s *Store) Recent(limit int) ([]Record, error) {
	q := `SELECT ` + selectCols + ` FROM report_history
	      ORDER BY timestamp DESC, id DESC`
	if limit > 0 {
		return s.query(q+` LIMIT ?`, limit)
	}
	return s.query(q)
}

// Delete removes a record. Deleting a missing id returns ErrNotFound.
func (s *Store) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM report_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting history record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWithFiles removes a record along with its saved report files.
// Missing files are ignored; the row is removed regardless.
func (s *Store) DeleteWithFiles(id int64) error {
	r, err := s.Get(id)
	if err != nil {
		return err
	}
	for _, path := range []string{r.MarkdownPath, r.HTMLPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing report file %s: %w", path, err)
		}
	}
	return s.Delete(id)
}

// Stats summarizes the history table.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	row := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(succeeded), 0),
		       COALESCE(AVG(elapsed_seconds), 0)
		FROM report_history`)
	if err := row.Scan(&st.Total, &st.Succeeded, &st.AvgElapsedSecs); err != nil {
		return Stats{}, fmt.Errorf("reading history stats: %w", err)
	}
	st.Failed = st.Total - st.Succeeded
	return st, nil
}

func (s *Store) query(q string, args ...any) ([]Record, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var r Record
	var succeeded int
	err := row.Scan(&r.ID, &r.Identifier, &r.DisplayName, &r.ReportName,
		&r.Timestamp, &r.MarkdownPath, &r.HTMLPath, &succeeded,
		&r.ErrorMessage, &r.ElapsedSeconds)
	if err != nil {
		return Record{}, err
	}
	r.Succeeded = succeeded != 0
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
