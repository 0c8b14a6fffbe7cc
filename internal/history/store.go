// Package history persists a local journal of evaluation runs so that
// scores and verdicts can be compared across harness invocations. The
// store is strictly best-effort: a broken or missing database must never
// fail an evaluation, so callers log and continue on write errors.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

const (
	// ModeCoverage marks a run produced by the coverage scorer.
	ModeCoverage = "coverage"
	// ModeHiaN marks a run produced by the ground-truth matcher.
	ModeHiaN = "hian"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	mode          TEXT NOT NULL,
	case_id       TEXT,
	final_score   REAL,
	pass          INTEGER,
	matched       INTEGER NOT NULL DEFAULT 0,
	missing       INTEGER NOT NULL DEFAULT 0,
	artifact_dir  TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_mode_created ON runs(mode, created_at);
`

// RunRecord is one evaluation run as stored in the journal. FinalScore is
// set for coverage runs, Pass/CaseID for ground-truth runs; the unused
// fields stay nil.
type RunRecord struct {
	ID          types.RunID
	Mode        string
	CaseID      string
	FinalScore  *float64
	Pass        *bool
	Matched     int
	Missing     int
	ArtifactDir string
	CreatedAt   time.Time
}

// Store wraps the SQLite connection holding the run journal.
type Store struct {
	conn *sql.DB
}

// Open opens (creating if needed) the run journal at path with WAL mode
// and a busy timeout suitable for concurrent harness invocations.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=%d",
		path, int((5 * time.Second).Milliseconds()))

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, types.WrapError(types.HISTORY_OPEN_FAILED,
			fmt.Sprintf("open run history %s", path), err)
	}
	conn.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, types.WrapError(types.HISTORY_OPEN_FAILED,
			fmt.Sprintf("ping run history %s", path), err)
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, types.WrapError(types.HISTORY_OPEN_FAILED,
			"create run history schema", err)
	}

	return &Store{conn: conn}, nil
}

// Record appends one run to the journal.
func (s *Store) Record(ctx context.Context, rec RunRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var pass *int
	if rec.Pass != nil {
		v := 0
		if *rec.Pass {
			v = 1
		}
		pass = &v
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO runs (id, mode, case_id, final_score, pass, matched, missing, artifact_dir, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Mode, nullString(rec.CaseID), rec.FinalScore, pass,
		rec.Matched, rec.Missing, rec.ArtifactDir, rec.CreatedAt)
	if err != nil {
		return types.WrapError(types.HISTORY_WRITE_FAILED, "record run", err)
	}
	return nil
}

// List returns the most recent runs, newest first. A non-empty mode
// filters to that run mode; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, mode string, limit int) ([]RunRecord, error) {
	query := `SELECT id, mode, case_id, final_score, pass, matched, missing, artifact_dir, created_at
		 FROM runs`
	args := []any{}
	if mode != "" {
		query += ` WHERE mode = ?`
		args = append(args, mode)
	}
	query += ` ORDER BY created_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.WrapError(types.HISTORY_WRITE_FAILED, "list runs", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec    RunRecord
			id     string
			caseID sql.NullString
			score  sql.NullFloat64
			pass   sql.NullInt64
		)
		if err := rows.Scan(&id, &rec.Mode, &caseID, &score, &pass,
			&rec.Matched, &rec.Missing, &rec.ArtifactDir, &rec.CreatedAt); err != nil {
			return nil, types.WrapError(types.HISTORY_WRITE_FAILED, "scan run row", err)
		}
		rid, err := types.ParseRunID(id)
		if err != nil {
			return nil, types.WrapError(types.HISTORY_WRITE_FAILED, "parse run id", err)
		}
		rec.ID = rid
		rec.CaseID = caseID.String
		if score.Valid {
			v := score.Float64
			rec.FinalScore = &v
		}
		if pass.Valid {
			v := pass.Int64 == 1
			rec.Pass = &v
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.HISTORY_WRITE_FAILED, "iterate runs", err)
	}
	return out, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
