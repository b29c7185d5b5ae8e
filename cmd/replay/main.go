package main

// #region imports
import (
	"flag"
	"fmt"
	"os"

	"github.com/visionlab/curvetrace/internal/replay"
	"github.com/visionlab/curvetrace/internal/segment"
)

// #endregion imports

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	verbose := flag.Bool("v", false, "print per-condition event counts")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [-v]")
		os.Exit(2)
	}

	fixture, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	res := replay.Replay(fixture)

	if fixture.Description != "" {
		fmt.Printf("fixture: %s\n", fixture.Description)
	}
	if *verbose && res.Segmented != nil {
		printCounts(res.Segmented)
	}

	if !res.Pass {
		for _, m := range res.Mismatches {
			fmt.Fprintf(os.Stderr, "mismatch: %s\n", m)
		}
		fmt.Fprintln(os.Stderr, "FAIL")
		os.Exit(1)
	}
	fmt.Println("PASS")
}

// #endregion main

// #region output

func printCounts(res *segment.Result) {
	fmt.Printf("end_time_s=%.3f usable_vols=%d\n", res.EndTimeS, res.UsableVols)
	for _, cond := range segment.Conditions() {
		if n := len(res.Events[cond]); n > 0 {
			fmt.Printf("  %-20s %d\n", cond, n)
		}
	}
}

// #endregion output
