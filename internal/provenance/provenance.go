// Package provenance records per-run modeling decisions so that excluded
// runs stay auditable alongside the modeled ones.
package provenance

// #region imports
import (
	"database/sql"
	"fmt"
	"time"
)

// #endregion imports

// #region log-decision
// LogDecision writes a provenance entry to the provenance_log table.
func LogDecision(db *sql.DB, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO provenance_log (run_id, log_path, decision, reason, detail_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nullIfEmpty(entry.RunID),
		entry.LogPath,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.DetailJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region list-decisions
// ListDecisions returns the most recent provenance entries.
func ListDecisions(db *sql.DB, limit int) ([]Entry, error) {
	rows, err := db.Query(
		`SELECT run_id, log_path, decision, reason, detail_json, created_at
		 FROM provenance_log ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var runID, reason, detail sql.NullString
		var createdStr string
		if err := rows.Scan(&runID, &e.LogPath, &e.Decision, &reason, &detail, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.RunID = runID.String
		e.Reason = reason.String
		e.DetailJSON = detail.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// #endregion list-decisions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
