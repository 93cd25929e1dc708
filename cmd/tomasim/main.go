// Package main provides the entry point for tomasim, a cycle-accurate
// Tomasulo out-of-order core simulator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/tomasim/core"
	"github.com/sarchlab/tomasim/internal/config"
	"github.com/sarchlab/tomasim/internal/report"
)

var (
	verbose = flag.Bool("v", false, "print per-cycle progress to stderr")
	maxCyc  = flag.Uint64("max-cycles", 1_000_000, "abort after this many cycles without completion")
	outPath = flag.String("o", "", "output file path (default: <input>_output.txt)")
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: tomasim [options] <input-file>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	inputPath := flag.Arg(0)

	cfg, err := config.Load(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tomasim: %v\n", err)
		os.Exit(1)
	}

	sim := core.NewSimulator(cfg.Program, cfg.ARF, cfg.Memory, cfg.Machine)

	for i := uint64(0); i < *maxCyc && !sim.Done(); i++ {
		sim.Tick()
		if *verbose {
			st := sim.Stats()
			fmt.Fprintf(os.Stderr, "cycle %d: retired %d\n", st.Cycles, st.Retired)
		}
	}

	if !sim.Done() {
		fmt.Fprintf(os.Stderr, "tomasim: did not complete within %d cycles\n", *maxCyc)
		os.Exit(1)
	}

	dest := *outPath
	if dest == "" {
		dest = inputPath + "_output.txt"
	}

	f, err := os.Create(dest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tomasim: creating output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := report.Write(f, sim); err != nil {
		fmt.Fprintf(os.Stderr, "tomasim: writing output file: %v\n", err)
		os.Exit(1)
	}

	st := sim.Stats()
	fmt.Printf("completed in %d cycles, %d instructions retired, CPI=%.3f, %d mispredicts\n",
		st.Cycles, st.Retired, st.CPI(), st.Mispredicts)
	if *verbose {
		for _, cause := range []struct {
			c    core.StallCause
			name string
		}{
			{core.StallROBFull, "ROB full"},
			{core.StallRSFull, "RS full"},
			{core.StallLSQFull, "LSQ full"},
			{core.StallCheckpointFull, "checkpoint buffer full"},
		} {
			if n := st.Stalls[cause.c]; n > 0 {
				fmt.Fprintf(os.Stderr, "stalls (%s): %d\n", cause.name, n)
			}
		}
	}
}
