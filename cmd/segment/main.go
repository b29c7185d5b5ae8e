package main

// #region imports
import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/visionlab/curvetrace/internal/batch"
	"github.com/visionlab/curvetrace/internal/export"
	"github.com/visionlab/curvetrace/internal/runparams"
	"github.com/visionlab/curvetrace/internal/segment"
	"github.com/visionlab/curvetrace/internal/store"
)

// #endregion imports

// #region main

func main() {
	trS := flag.Float64("tr", 0, "sampling period in seconds per volume (with --nvols)")
	nvols := flag.Int("nvols", 0, "total acquired volumes (with --tr)")
	funcs := flag.String("func", "", "comma-separated functional NIfTI paths, one per log, to derive tr/nvols")
	outDir := flag.String("out", "", "directory for EV files (one subdirectory per log)")
	dbPath := flag.String("db", "", "optional results database")
	workers := flag.Int64("workers", 4, "max concurrent runs")
	marginS := flag.Float64("margin", segment.DefaultConfig().PostCorrectMarginS,
		"post-hoc margin after the last correct trial, seconds")
	flag.Parse()

	logs := flag.Args()
	if len(logs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: segment [flags] events.tsv [events.tsv ...]")
		fmt.Fprintln(os.Stderr, "       scan parameters come from --tr/--nvols or from --func headers")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	inputs, err := buildInputs(logs, *trS, *nvols, *funcs, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	var st *store.Store
	if *dbPath != "" {
		st, err = store.NewStore(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open db: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
	}

	cfg := segment.DefaultConfig()
	cfg.PostCorrectMarginS = *marginS

	proc := &batch.Processor{
		MaxConcurrent: *workers,
		Config:        cfg,
		Store:         st,
		Logger:        logger,
	}
	outputs, err := proc.Process(context.Background(), inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	excluded := 0
	for _, out := range outputs {
		if out.Err != nil {
			excluded++
			continue
		}
		if *outDir != "" {
			dir := filepath.Join(*outDir, evDirName(out.Input.LogPath))
			if _, err := export.WriteEVFiles(dir, out.Result); err != nil {
				fmt.Fprintf(os.Stderr, "export %s: %v\n", out.Input.LogPath, err)
				excluded++
				continue
			}
		}
		fmt.Printf("%s: end_time=%.3fs usable_vols=%d/%d\n",
			out.Input.LogPath, out.Result.EndTimeS, out.Result.UsableVols, out.Input.TotalVols)
	}

	if excluded > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d runs excluded\n", excluded, len(outputs))
		os.Exit(1)
	}
}

// #endregion main

// #region inputs

// buildInputs resolves scan parameters for every log, either shared
// --tr/--nvols values or per-log functional image headers.
func buildInputs(logs []string, trS float64, nvols int, funcs string, logger *slog.Logger) ([]batch.RunInput, error) {
	if funcs == "" {
		if trS <= 0 || nvols < 1 {
			return nil, fmt.Errorf("need --tr and --nvols, or --func")
		}
		inputs := make([]batch.RunInput, len(logs))
		for i, log := range logs {
			inputs[i] = batch.RunInput{LogPath: log, TRS: trS, TotalVols: nvols}
		}
		return inputs, nil
	}

	paths := strings.Split(funcs, ",")
	if len(paths) != len(logs) {
		return nil, fmt.Errorf("--func lists %d images for %d logs", len(paths), len(logs))
	}
	inputs := make([]batch.RunInput, len(logs))
	for i, log := range logs {
		params, err := runparams.FromHeaderFile(strings.TrimSpace(paths[i]), logger)
		if err != nil {
			return nil, err
		}
		inputs[i] = batch.RunInput{LogPath: log, TRS: params.TRS, TotalVols: params.NVols}
	}
	return inputs, nil
}

// evDirName derives a per-log output directory name from the log file name.
func evDirName(logPath string) string {
	base := filepath.Base(logPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// #endregion inputs
