package store

import "time"

// #region run-record
// RunRecord is one segmented run as persisted in the runs table.
type RunRecord struct {
	RunID      string
	LogPath    string
	TRS        float64
	TotalVols  int
	UsableVols int
	EndTimeS   float64
	CreatedAt  time.Time
}

// #endregion run-record
