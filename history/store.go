// Package history - SQLite persistence of completed detection runs.
package history

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/pipeline"
	"github.com/nvr-ai/go-detect/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	model      TEXT NOT NULL,
	threshold  REAL NOT NULL,
	width      INTEGER NOT NULL,
	height     INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS detections (
	run_id      TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	object_type TEXT NOT NULL,
	confidence  REAL NOT NULL,
	x1 REAL NOT NULL,
	y1 REAL NOT NULL,
	x2 REAL NOT NULL,
	y2 REAL NOT NULL,
	PRIMARY KEY (run_id, seq),
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Run is a stored run without its detections.
type Run struct {
	ID         string        `json:"id"`
	Model      models.Name   `json:"model"`
	Threshold  float32       `json:"threshold"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Elapsed    time.Duration `json:"elapsed"`
	Detections int           `json:"detections"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Detection is a stored table row with its box.
type Detection struct {
	report.Record
	Box images.Box `json:"box"`
}

// Store keeps run history in a SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path and applies the schema.
//
// Arguments:
//   - path: The database file, or ":memory:".
//
// Returns:
//   - *Store: The ready store.
//   - error: An error if the file cannot be opened or migrated.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open history database")
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to migrate history database")
	}
	return &Store{db: db}, nil
}

// Save stores a run and its detections in one transaction.
func (s *Store) Save(ctx context.Context, result *pipeline.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	bounds := result.Original.Bounds()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, model, threshold, width, height, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID.String(), string(result.Model), result.Threshold,
		bounds.Dx(), bounds.Dy(), result.Elapsed.Milliseconds(), result.CreatedAt.UnixNano(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO detections (run_id, seq, object_type, confidence, x1, y1, x2, y2)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare detection insert")
	}
	defer stmt.Close()

	for i, rec := range result.Records {
		var (
			score float32
			box   images.Box
		)
		if i < len(result.Detections) {
			score = result.Detections[i].Score
			box = result.Detections[i].Box
		}
		if _, err := stmt.ExecContext(ctx, result.RunID.String(), rec.ID, rec.ObjectType, score,
			box.X1, box.Y1, box.X2, box.Y2); err != nil {
			return errors.Wrapf(err, "failed to insert detection %d", rec.ID)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit run")
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.model, r.threshold, r.width, r.height, r.elapsed_ms, r.created_at,
		       (SELECT COUNT(*) FROM detections d WHERE d.run_id = r.id)
		FROM runs r
		ORDER BY r.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run       Run
			model     string
			elapsedMS int64
			created   int64
		)
		if err := rows.Scan(&run.ID, &model, &run.Threshold, &run.Width, &run.Height,
			&elapsedMS, &created, &run.Detections); err != nil {
			return nil, errors.Wrap(err, "failed to scan run")
		}
		run.Model = models.Name(model)
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		run.CreatedAt = time.Unix(0, created).UTC()
		runs = append(runs, run)
	}
	return runs, errors.Wrap(rows.Err(), "failed to iterate runs")
}

// Records returns the detections of one run in display order.
func (s *Store) Records(ctx context.Context, runID string) ([]Detection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, object_type, confidence, x1, y1, x2, y2
		FROM detections
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query detections")
	}
	defer rows.Close()

	detections := []Detection{}
	for rows.Next() {
		var (
			d     Detection
			score float32
		)
		if err := rows.Scan(&d.ID, &d.ObjectType, &score,
			&d.Box.X1, &d.Box.Y1, &d.Box.X2, &d.Box.Y2); err != nil {
			return nil, errors.Wrap(err, "failed to scan detection")
		}
		d.Confidence = report.FormatConfidence(score)
		detections = append(detections, d)
	}
	return detections, errors.Wrap(rows.Err(), "failed to iterate detections")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
