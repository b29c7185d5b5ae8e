// Package replay runs recorded event logs through the segmenter and diffs
// the outcome against a fixture's expectations. Fixtures double as
// regression tests and as a debugging aid for misbehaving session logs.
package replay

// #region imports
import (
	"fmt"
	"math"
	"strings"

	"github.com/visionlab/curvetrace/internal/segment"
)

// #endregion imports

// #region result

// tolS is the tolerance for comparing derived times and amplitudes.
const tolS = 1e-9

// Result captures the outcome of replaying one fixture.
type Result struct {
	Pass       bool
	Mismatches []string
	// Segmented holds the segmenter output when the run succeeded.
	Segmented *segment.Result
	// Err holds the segmentation error when the run failed.
	Err error
}

// #endregion result

// #region replay

// Replay runs the fixture's rows through the segmenter entirely in memory
// and checks the outcome against the fixture's expectations.
func Replay(f *Fixture) Result {
	seg := segment.New(f.SegmentConfig())
	res, err := seg.Process(f.RawRows(), f.TRS, f.TotalVols)

	if f.Expected.Error != "" {
		if err == nil {
			return Result{
				Mismatches: []string{fmt.Sprintf("expected error containing %q, run succeeded", f.Expected.Error)},
				Segmented:  &res,
			}
		}
		if !strings.Contains(err.Error(), f.Expected.Error) {
			return Result{
				Mismatches: []string{fmt.Sprintf("expected error containing %q, got %q", f.Expected.Error, err)},
				Err:        err,
			}
		}
		return Result{Pass: true, Err: err}
	}

	if err != nil {
		return Result{
			Mismatches: []string{fmt.Sprintf("unexpected error: %v", err)},
			Err:        err,
		}
	}

	var mismatches []string
	if !near(res.EndTimeS, f.Expected.EndTimeS) {
		mismatches = append(mismatches, fmt.Sprintf("end_time_s: expected %g, got %g", f.Expected.EndTimeS, res.EndTimeS))
	}
	if res.UsableVols != f.Expected.UsableVols {
		mismatches = append(mismatches, fmt.Sprintf("usable_vols: expected %d, got %d", f.Expected.UsableVols, res.UsableVols))
	}
	mismatches = append(mismatches, diffConditions(f.Expected.Conditions, res.Events)...)

	return Result{Pass: len(mismatches) == 0, Mismatches: mismatches, Segmented: &res}
}

// #endregion replay

// #region diff

// diffConditions checks every listed bucket exactly and requires every
// unlisted bucket to be empty.
func diffConditions(expected map[string][]FixtureEvent, got map[segment.Condition][]segment.Event) []string {
	var mismatches []string
	for _, cond := range segment.Conditions() {
		want := expected[string(cond)]
		have := got[cond]
		if len(want) != len(have) {
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %d events, got %d", cond, len(want), len(have)))
			continue
		}
		for i := range want {
			w, h := want[i], have[i]
			if !near(w.OnsetS, h.OnsetS) || !near(w.DurS, h.DurS) || !near(w.Amplitude, h.Amplitude) {
				mismatches = append(mismatches, fmt.Sprintf(
					"%s[%d]: expected (%g, %g, %g), got (%g, %g, %g)",
					cond, i, w.OnsetS, w.DurS, w.Amplitude, h.OnsetS, h.DurS, h.Amplitude))
			}
		}
	}
	return mismatches
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= tolS
}

// #endregion diff
