// Package export writes the artifacts the downstream design-matrix builder
// consumes: one three-column (onset, duration, amplitude) file per condition
// with at least one event, plus a JSON summary carrying the run scalars.
package export

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/visionlab/curvetrace/internal/segment"
)

// #endregion imports

// #region summary

// Summary is the run-level sidecar written next to the EV files.
type Summary struct {
	Conditions []string `json:"conditions"`
	EndTimeS   float64  `json:"end_time_s"`
	UsableVols int      `json:"usable_vols"`
}

// #endregion summary

// #region write

// WriteEVFiles writes per-condition EV files and summary.json under dir,
// creating it if needed. Empty buckets produce no file; the summary lists
// the conditions that did, in vocabulary order.
func WriteEVFiles(dir string, res segment.Result) (Summary, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output dir: %w", err)
	}

	summary := Summary{
		Conditions: []string{},
		EndTimeS:   res.EndTimeS,
		UsableVols: res.UsableVols,
	}

	for _, cond := range segment.Conditions() {
		evs := res.Events[cond]
		if len(evs) == 0 {
			continue
		}

		var b strings.Builder
		for _, ev := range evs {
			fmt.Fprintf(&b, "%g\t%g\t%g\n", ev.OnsetS, ev.DurS, ev.Amplitude)
		}

		path := filepath.Join(dir, string(cond)+".txt")
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return Summary{}, fmt.Errorf("write %s: %w", path, err)
		}
		summary.Conditions = append(summary.Conditions, string(cond))
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return Summary{}, fmt.Errorf("marshal summary: %w", err)
	}
	path := filepath.Join(dir, "summary.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return Summary{}, fmt.Errorf("write %s: %w", path, err)
	}

	return summary, nil
}

// #endregion write
