package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionlab/curvetrace/internal/provenance"
	"github.com/visionlab/curvetrace/internal/segment"
	"github.com/visionlab/curvetrace/internal/store"
)

// #region log-builders

const logHeader = "task\tevent\tinfo\ttime_s\trecord_time_s\n"

func logRow(task, event, info string, t float64) string {
	return fmt.Sprintf("%s\t%s\t%s\t%g\t%g\n", task, event, info, t, t+0.01)
}

// goodLog is a minimal modelable run: one correct UL trial.
func goodLog() string {
	return logHeader +
		logRow("Curve tracing", "MRI_Trigger", "Received", 100) +
		logRow("Curve tracing", "TargetLoc", "UL", 101) +
		logRow("Curve tracing", "NewState", "PRESWITCH", 105) +
		logRow("Curve tracing", "NewState", "SWITCHED", 108) +
		logRow("Curve tracing", "ResponseGiven", "CORRECT", 109) +
		logRow("Curve tracing", "NewState", "POSTSWITCH", 110) +
		logRow("Curve tracing", "NewState", "TRIAL_END", 111)
}

// badLog has no received trigger, so the run cannot be anchored.
func badLog() string {
	return logHeader +
		logRow("Curve tracing", "NewState", "INTERTRIAL", 100)
}

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// #endregion log-builders

// #region tests

func TestProcessSegmentsRunsInInputOrder(t *testing.T) {
	dir := t.TempDir()
	good := writeLog(t, dir, "good.tsv", goodLog())
	bad := writeLog(t, dir, "bad.tsv", badLog())

	p := &Processor{
		MaxConcurrent: 4,
		Config:        segment.DefaultConfig(),
		Logger:        quietLogger(),
	}
	outs, err := p.Process(context.Background(), []RunInput{
		{LogPath: good, TRS: 2.5, TotalVols: 420},
		{LogPath: bad, TRS: 2.5, TotalVols: 420},
		{LogPath: good, TRS: 2.5, TotalVols: 420},
	})
	require.NoError(t, err)
	require.Len(t, outs, 3)

	assert.NoError(t, outs[0].Err)
	assert.InDelta(t, 11.0, outs[0].Result.EndTimeS, 1e-9)
	assert.Equal(t, 4, outs[0].Result.UsableVols)

	require.Error(t, outs[1].Err)
	assert.ErrorIs(t, outs[1].Err, segment.ErrMissingTrigger)

	assert.NoError(t, outs[2].Err)
	assert.Equal(t, outs[0].Input.LogPath, outs[2].Input.LogPath)
}

func TestProcessRecordsToStore(t *testing.T) {
	dir := t.TempDir()
	good := writeLog(t, dir, "good.tsv", goodLog())
	bad := writeLog(t, dir, "bad.tsv", badLog())

	st, err := store.NewStore(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer st.Close()

	p := &Processor{
		MaxConcurrent: 2,
		Config:        segment.DefaultConfig(),
		Store:         st,
		Logger:        quietLogger(),
	}
	outs, err := p.Process(context.Background(), []RunInput{
		{LogPath: good, TRS: 2.5, TotalVols: 420},
		{LogPath: bad, TRS: 2.5, TotalVols: 420},
	})
	require.NoError(t, err)

	require.NotEmpty(t, outs[0].RunID, "modeled run must get a store id")
	assert.Empty(t, outs[1].RunID)

	rec, err := st.GetRun(outs[0].RunID)
	require.NoError(t, err)
	assert.Equal(t, good, rec.LogPath)
	assert.Equal(t, 4, rec.UsableVols)

	entries, err := provenance.ListDecisions(st.DB(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byDecision := map[string]int{}
	for _, e := range entries {
		byDecision[e.Decision]++
	}
	assert.Equal(t, 1, byDecision[provenance.DecisionModeled])
	assert.Equal(t, 1, byDecision[provenance.DecisionExcluded])
}

func TestProcessUnreadableLogIsExcluded(t *testing.T) {
	p := &Processor{Config: segment.DefaultConfig(), Logger: quietLogger()}
	outs, err := p.Process(context.Background(), []RunInput{
		{LogPath: filepath.Join(t.TempDir(), "missing.tsv"), TRS: 2.5, TotalVols: 100},
	})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Error(t, outs[0].Err)
}

func TestProcessCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	good := writeLog(t, dir, "good.tsv", goodLog())

	p := &Processor{MaxConcurrent: 1, Config: segment.DefaultConfig(), Logger: quietLogger()}
	_, err := p.Process(ctx, []RunInput{{LogPath: good, TRS: 2.5, TotalVols: 420}})
	assert.Error(t, err)
}

func TestProcessZeroWorkersMeansOne(t *testing.T) {
	dir := t.TempDir()
	good := writeLog(t, dir, "good.tsv", goodLog())

	p := &Processor{Config: segment.DefaultConfig(), Logger: quietLogger()}
	outs, err := p.Process(context.Background(), []RunInput{
		{LogPath: good, TRS: 2.5, TotalVols: 420},
		{LogPath: good, TRS: 2.5, TotalVols: 420},
	})
	require.NoError(t, err)
	require.Len(t, outs, 2)
	for _, out := range outs {
		assert.NoError(t, out.Err)
	}
}

// #endregion tests
