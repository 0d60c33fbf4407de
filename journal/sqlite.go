package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// schema is the decision table. One row per engine run.
const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id TEXT PRIMARY KEY,
	timestamp INTEGER NOT NULL,
	phase TEXT NOT NULL,
	tool_name TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL DEFAULT '',
	verdict TEXT NOT NULL,
	triggering_check TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL DEFAULT '',
	fallback_tier TEXT NOT NULL DEFAULT 'none',
	elapsed_ms INTEGER NOT NULL DEFAULT 0,
	checks_evaluated INTEGER NOT NULL DEFAULT 0,
	checks_failed INTEGER NOT NULL DEFAULT 0,
	checks_skipped INTEGER NOT NULL DEFAULT 0,
	project TEXT NOT NULL DEFAULT '',
	diagnostics TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_decisions_timestamp ON decisions(timestamp);
CREATE INDEX IF NOT EXISTS idx_decisions_verdict ON decisions(verdict);
`

const recordColumns = `id, timestamp, phase, tool_name, path, verdict,
	triggering_check, message, fallback_tier, elapsed_ms,
	checks_evaluated, checks_failed, checks_skipped, project, diagnostics`

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string

	saveStmt  *sql.Stmt
	getStmt   *sql.Stmt
	pruneStmt *sql.Stmt
}

// NewSQLiteStore opens (and initializes, if needed) the journal database
// at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	// WAL keeps concurrent hook invocations from blocking each other.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db, path: path}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO decisions (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.getStmt, err = s.db.Prepare(`
		SELECT ` + recordColumns + `
		FROM decisions
		WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`
		DELETE FROM decisions
		WHERE timestamp < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// Save persists one decision record.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record must not be nil")
	}
	if rec.ID == uuid.Nil {
		return fmt.Errorf("record id must not be empty")
	}

	var diagJSON string
	if rec.Diagnostics != nil {
		data, err := json.Marshal(rec.Diagnostics)
		if err != nil {
			return fmt.Errorf("failed to marshal diagnostics: %w", err)
		}
		diagJSON = string(data)
	}

	_, err := s.saveStmt.ExecContext(ctx,
		rec.ID.String(),
		rec.Timestamp.UnixMilli(),
		rec.Phase,
		rec.ToolName,
		rec.Path,
		rec.Verdict,
		rec.Triggering,
		rec.Message,
		rec.Fallback,
		rec.Elapsed.Milliseconds(),
		rec.ChecksEvaluated,
		rec.ChecksFailed,
		rec.ChecksSkipped,
		rec.Project,
		diagJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return nil
}

// Get retrieves a record by run ID. Returns nil when not found.
func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	row := s.getStmt.QueryRowContext(ctx, id.String())

	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// Query retrieves records matching the filter, newest first.
func (s *SQLiteStore) Query(ctx context.Context, filter Filter) ([]*Record, error) {
	where, args := buildWhere(filter)

	q := `SELECT ` + recordColumns + ` FROM decisions` + where + ` ORDER BY timestamp DESC, id DESC`
	if filter.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		q += " LIMIT -1"
	}
	if filter.Offset > 0 {
		q += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// Count returns the number of records matching the filter.
func (s *SQLiteStore) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := buildWhere(filter)

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM decisions"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// Prune deletes records older than the given time.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int, error) {
	result, err := s.pruneStmt.ExecContext(ctx, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(deleted), nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.saveStmt != nil {
		s.saveStmt.Close()
	}
	if s.getStmt != nil {
		s.getStmt.Close()
	}
	if s.pruneStmt != nil {
		s.pruneStmt.Close()
	}
	if s.db == nil {
		return nil
	}
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// buildWhere translates a filter into a WHERE clause and its arguments.
func buildWhere(filter Filter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UnixMilli())
	}
	if filter.Verdict != "" {
		clauses = append(clauses, "verdict = ?")
		args = append(args, filter.Verdict)
	}
	if filter.Phase != "" {
		clauses = append(clauses, "phase = ?")
		args = append(args, filter.Phase)
	}
	if filter.Project != "" {
		clauses = append(clauses, "project = ?")
		args = append(args, filter.Project)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// scanRecord reads one row through the given scan function.
func scanRecord(scan func(dest ...any) error) (*Record, error) {
	var (
		id        string
		ts        int64
		elapsedMS int64
		diagJSON  string
		rec       Record
	)

	err := scan(
		&id,
		&ts,
		&rec.Phase,
		&rec.ToolName,
		&rec.Path,
		&rec.Verdict,
		&rec.Triggering,
		&rec.Message,
		&rec.Fallback,
		&elapsedMS,
		&rec.ChecksEvaluated,
		&rec.ChecksFailed,
		&rec.ChecksSkipped,
		&rec.Project,
		&diagJSON,
	)
	if err != nil {
		return nil, err
	}

	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid record id %q: %w", id, err)
	}
	rec.Timestamp = time.UnixMilli(ts).UTC()
	rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond

	if diagJSON != "" {
		rec.Diagnostics = &Diagnostics{}
		if err := json.Unmarshal([]byte(diagJSON), rec.Diagnostics); err != nil {
			return nil, fmt.Errorf("invalid diagnostics for record %s: %w", id, err)
		}
	}

	return &rec, nil
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)
