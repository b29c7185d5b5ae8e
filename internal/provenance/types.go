package provenance

import "time"

// #region decisions

// Decisions recorded for a run's event log.
const (
	// DecisionModeled means the log segmented cleanly and its events were
	// produced.
	DecisionModeled = "modeled"
	// DecisionExcluded means the log violated the segmenter's contract and
	// the run must be dropped from further analysis.
	DecisionExcluded = "excluded"
)

// #endregion decisions

// #region entry
// Entry is a single row in the provenance_log table.
type Entry struct {
	RunID      string // empty for excluded runs, which never get an ID
	LogPath    string
	Decision   string // DecisionModeled | DecisionExcluded
	Reason     string
	DetailJSON string
	CreatedAt  time.Time
}

// #endregion entry

// #region modeled-detail
// ModeledDetail captures the derived scalars of a modeled run. Serialized
// as JSON into provenance_log.detail_json.
type ModeledDetail struct {
	EndTimeS   float64 `json:"end_time_s"`
	UsableVols int     `json:"usable_vols"`
	TotalVols  int     `json:"total_vols"`
	TRS        float64 `json:"tr_s"`
}

// #endregion modeled-detail
