package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/visionlab/curvetrace/internal/provenance"
	"github.com/visionlab/curvetrace/internal/segment"
	"github.com/visionlab/curvetrace/internal/store"
	_ "modernc.org/sqlite"
)

// #endregion imports

// #region main

func main() {
	dbPath := flag.String("db", "", "path to results database")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	decisions := flag.Bool("decisions", false, "list provenance decisions instead of runs")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/runs.db [--last N] [--run id] [--decisions] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *decisions:
		err = runDecisionsMode(st, *last, *jsonOut)
	case *runID != "":
		err = runDetailMode(st, *runID, *jsonOut)
	default:
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID      string  `json:"run_id"`
	LogPath    string  `json:"log_path"`
	EndTimeS   float64 `json:"end_time_s"`
	UsableVols int     `json:"usable_vols"`
	TotalVols  int     `json:"total_vols"`
	CreatedAt  string  `json:"created_at"`
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[i] = listRow{
			RunID:      r.RunID,
			LogPath:    r.LogPath,
			EndTimeS:   r.EndTimeS,
			UsableVols: r.UsableVols,
			TotalVols:  r.TotalVols,
			CreatedAt:  r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %9s  %11s  %-20s  %s\n", "Run", "End (s)", "Vols", "Time", "Log")
	for _, r := range rows {
		fmt.Printf("%-10s  %9.2f  %5d/%-5d  %-20s  %s\n",
			shortID(r.RunID), r.EndTimeS, r.UsableVols, r.TotalVols, r.CreatedAt, r.LogPath)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	listRow
	TRS        float64        `json:"tr_s"`
	Conditions map[string]int `json:"condition_counts"`
}

func runDetailMode(st *store.Store, runID string, jsonOut bool) error {
	rec, err := st.GetRun(runID)
	if err != nil {
		return err
	}
	buckets, err := st.EventsForRun(runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		listRow: listRow{
			RunID:      rec.RunID,
			LogPath:    rec.LogPath,
			EndTimeS:   rec.EndTimeS,
			UsableVols: rec.UsableVols,
			TotalVols:  rec.TotalVols,
			CreatedAt:  rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		},
		TRS:        rec.TRS,
		Conditions: map[string]int{},
	}
	for cond, evs := range buckets {
		out.Conditions[string(cond)] = len(evs)
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:         %s\n", out.RunID)
	fmt.Printf("Log:         %s\n", out.LogPath)
	fmt.Printf("Created:     %s\n", out.CreatedAt)
	fmt.Printf("TR:          %.5fs\n", out.TRS)
	fmt.Printf("End time:    %.3fs\n", out.EndTimeS)
	fmt.Printf("Volumes:     %d usable of %d acquired\n", out.UsableVols, out.TotalVols)

	fmt.Printf("\nCondition events:\n")
	for _, cond := range segment.Conditions() {
		fmt.Printf("  %-20s %d\n", cond, out.Conditions[string(cond)])
	}
	return nil
}

// #endregion detail-mode

// #region decisions-mode

func runDecisionsMode(st *store.Store, last int, jsonOut bool) error {
	entries, err := provenance.ListDecisions(st.DB(), last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no decisions found")
		return nil
	}

	if jsonOut {
		return printJSON(entries)
	}

	fmt.Printf("%-10s  %-8s  %-20s  %s\n", "Run", "Decision", "Time", "Log / Reason")
	for _, e := range entries {
		id := "—"
		if e.RunID != "" {
			id = shortID(e.RunID)
		}
		detail := e.LogPath
		if e.Reason != "" {
			detail = fmt.Sprintf("%s: %s", e.LogPath, e.Reason)
		}
		fmt.Printf("%-10s  %-8s  %-20s  %s\n",
			id, e.Decision, e.CreatedAt.Format("2006-01-02T15:04:05Z"), detail)
	}
	return nil
}

// #endregion decisions-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
