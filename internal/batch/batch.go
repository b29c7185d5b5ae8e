// Package batch segments many runs' event logs concurrently. Each run is
// independent and carries its own scratch state, so the only coordination is
// a semaphore bounding how many logs are in flight at once.
package batch

// #region imports
import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/visionlab/curvetrace/internal/events"
	"github.com/visionlab/curvetrace/internal/provenance"
	"github.com/visionlab/curvetrace/internal/segment"
	"github.com/visionlab/curvetrace/internal/store"
)

// #endregion imports

// #region types

// RunInput identifies one run to segment.
type RunInput struct {
	LogPath   string
	TRS       float64
	TotalVols int
}

// RunOutput is the outcome of segmenting one run. Err is set when the log
// violated the segmenter's contract; such runs are excluded, never retried.
type RunOutput struct {
	Input  RunInput
	Result segment.Result
	RunID  string // set when a store is attached and the run was modeled
	Err    error
}

// Processor segments batches of runs with bounded concurrency.
type Processor struct {
	// MaxConcurrent bounds in-flight runs; values below 1 mean 1.
	MaxConcurrent int64
	// Config is the segmenter policy for every run in the batch.
	Config segment.Config
	// Store, when non-nil, receives every modeled run and a provenance
	// entry for every run, modeled or excluded.
	Store  *store.Store
	Logger *slog.Logger
}

// #endregion types

// #region process

// Process segments all inputs and returns one output per input, in input
// order. ctx cancellation stops unstarted runs; runs already in flight
// complete (a single pass over one log is short).
func (p *Processor) Process(ctx context.Context, inputs []RunInput) ([]RunOutput, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "batch")

	workers := p.MaxConcurrent
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(workers)

	outputs := make([]RunOutput, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(i int, in RunInput) {
			defer wg.Done()
			defer sem.Release(1)
			outputs[i] = p.processOne(in, logger)
		}(i, in)
	}
	wg.Wait()

	return outputs, nil
}

func (p *Processor) processOne(in RunInput, logger *slog.Logger) RunOutput {
	out := RunOutput{Input: in}

	rows, err := events.ReadLogFile(in.LogPath)
	if err != nil {
		out.Err = err
		p.record(&out, logger)
		return out
	}

	res, err := segment.New(p.Config).Process(rows, in.TRS, in.TotalVols)
	if err != nil {
		out.Err = err
		p.record(&out, logger)
		return out
	}
	out.Result = res

	p.record(&out, logger)
	return out
}

// #endregion process

// #region record

// record persists the run and its provenance entry when a store is attached,
// and logs the outcome either way.
func (p *Processor) record(out *RunOutput, logger *slog.Logger) {
	in := out.Input

	if out.Err != nil {
		logger.Error("run excluded", "log", in.LogPath, "error", out.Err)
		if p.Store != nil {
			entry := provenance.Entry{
				LogPath:  in.LogPath,
				Decision: provenance.DecisionExcluded,
				Reason:   out.Err.Error(),
			}
			if err := provenance.LogDecision(p.Store.DB(), entry); err != nil {
				logger.Error("record exclusion", "log", in.LogPath, "error", err)
			}
		}
		return
	}

	logger.Info("run modeled", "log", in.LogPath,
		"end_time_s", out.Result.EndTimeS, "usable_vols", out.Result.UsableVols)

	if p.Store == nil {
		return
	}

	rec, err := p.Store.SaveRun(in.LogPath, in.TRS, in.TotalVols, out.Result)
	if err != nil {
		logger.Error("save run", "log", in.LogPath, "error", err)
		return
	}
	out.RunID = rec.RunID

	detail, _ := json.Marshal(provenance.ModeledDetail{
		EndTimeS:   out.Result.EndTimeS,
		UsableVols: out.Result.UsableVols,
		TotalVols:  in.TotalVols,
		TRS:        in.TRS,
	})
	entry := provenance.Entry{
		RunID:      rec.RunID,
		LogPath:    in.LogPath,
		Decision:   provenance.DecisionModeled,
		DetailJSON: string(detail),
	}
	if err := provenance.LogDecision(p.Store.DB(), entry); err != nil {
		logger.Error("record decision", "log", in.LogPath, "error", err)
	}
}

// #endregion record
