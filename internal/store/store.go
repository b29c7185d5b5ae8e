package store

// #region imports
import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/visionlab/curvetrace/internal/segment"
)

// #endregion imports

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	log_path     TEXT NOT NULL,
	tr_s         REAL NOT NULL,
	total_vols   INTEGER NOT NULL,
	usable_vols  INTEGER NOT NULL,
	end_time_s   REAL NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS condition_events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	condition    TEXT NOT NULL,
	ord          INTEGER NOT NULL,
	onset_s      REAL NOT NULL,
	dur_s        REAL NOT NULL,
	amplitude    REAL NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT,
	log_path     TEXT NOT NULL,
	decision     TEXT NOT NULL,
	reason       TEXT,
	detail_json  TEXT,
	created_at   TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store persists segmented runs in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. provenance).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region save-run
// SaveRun inserts a segmented run and all its condition events in one
// transaction, preserving bucket order.
func (s *Store) SaveRun(logPath string, trS float64, totalVols int, res segment.Result) (RunRecord, error) {
	rec := RunRecord{
		RunID:      uuid.New().String(),
		LogPath:    logPath,
		TRS:        trS,
		TotalVols:  totalVols,
		UsableVols: res.UsableVols,
		EndTimeS:   res.EndTimeS,
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return RunRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, log_path, tr_s, total_vols, usable_vols, end_time_s, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.LogPath, rec.TRS, rec.TotalVols, rec.UsableVols, rec.EndTimeS,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}

	insert, err := tx.Prepare(
		`INSERT INTO condition_events (run_id, condition, ord, onset_s, dur_s, amplitude)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	for _, cond := range segment.Conditions() {
		for ord, ev := range res.Events[cond] {
			if _, err := insert.Exec(rec.RunID, string(cond), ord, ev.OnsetS, ev.DurS, ev.Amplitude); err != nil {
				return RunRecord{}, fmt.Errorf("insert event %s[%d]: %w", cond, ord, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return RunRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// #endregion save-run

// #region get-run
// GetRun retrieves a run record by ID.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord
	var createdStr string
	err := s.db.QueryRow(
		`SELECT run_id, log_path, tr_s, total_vols, usable_vols, end_time_s, created_at
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&rec.RunID, &rec.LogPath, &rec.TRS, &rec.TotalVols, &rec.UsableVols, &rec.EndTimeS, &createdStr)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, log_path, tr_s, total_vols, usable_vols, end_time_s, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var createdStr string
		if err := rows.Scan(&rec.RunID, &rec.LogPath, &rec.TRS, &rec.TotalVols,
			&rec.UsableVols, &rec.EndTimeS, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// #endregion list-runs

// #region events-for-run
// EventsForRun rebuilds a run's condition buckets. Every condition in the
// vocabulary is present, empty or not, matching the segmenter's output shape.
func (s *Store) EventsForRun(runID string) (map[segment.Condition][]segment.Event, error) {
	rows, err := s.db.Query(
		`SELECT condition, onset_s, dur_s, amplitude FROM condition_events
		 WHERE run_id = ? ORDER BY condition, ord`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	buckets := make(map[segment.Condition][]segment.Event, len(segment.Conditions()))
	for _, c := range segment.Conditions() {
		buckets[c] = []segment.Event{}
	}
	for rows.Next() {
		var cond string
		var ev segment.Event
		if err := rows.Scan(&cond, &ev.OnsetS, &ev.DurS, &ev.Amplitude); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		buckets[segment.Condition(cond)] = append(buckets[segment.Condition(cond)], ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return buckets, nil
}

// #endregion events-for-run
