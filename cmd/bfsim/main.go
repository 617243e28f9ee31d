// Package main provides the bfsim command-line interface. It loads a
// mnemonic-level test source, runs it through the simulator core, and
// reports the verdict.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/bfsim/harness"
	"github.com/sarchlab/bfsim/insts"
	"github.com/sarchlab/bfsim/loader"
	"github.com/sarchlab/bfsim/timing/cache"
	"github.com/sarchlab/bfsim/timing/core"
	"github.com/sarchlab/bfsim/timing/latency"
)

var (
	timing     = flag.Bool("timing", false, "Print a cycle estimate for the run")
	configPath = flag.String("config", "", "Path to timing configuration JSON file")
	verbose    = flag.Bool("v", false, "Dump final register state")
	maxInsts   = flag.Uint64("max-insts", 1_000_000, "Instruction-count watchdog (0 = no limit)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: bfsim [options] <test.s>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	prog, err := loader.LoadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading test: %v\n", err)
		os.Exit(1)
	}

	opts := []harness.Option{
		harness.WithMaxInstructions(*maxInsts),
		harness.WithOutput(os.Stdout),
	}
	if *timing {
		opts = append(opts, harness.WithTrace())
	}

	runner := harness.NewRunner(prog, opts...)
	verdict := runner.Run()

	switch {
	case verdict.Passed():
	case verdict.Mismatch != nil:
		fmt.Printf("FAIL %s\n", verdict.Mismatch)
	default:
		fmt.Printf("FAIL %v\n", verdict.Err)
	}

	if *verbose {
		dumpRegisters(runner)
	}
	if *timing {
		printTiming(runner)
	}

	if !verdict.Passed() {
		os.Exit(1)
	}
}

// dumpRegisters prints the final register state by class.
func dumpRegisters(runner *harness.Runner) {
	regFile := runner.Emulator().RegFile()
	for _, class := range []insts.RegClass{
		insts.ClassData, insts.ClassPointer, insts.ClassIndex,
	} {
		for _, reg := range insts.ClassRegs(class) {
			fmt.Printf("  %-3v= 0x%08X\n", reg, regFile.Read(reg))
		}
	}
}

// printTiming replays the recorded trace through the timing model.
func printTiming(runner *harness.Runner) {
	table := latency.NewTable()
	if *configPath != "" {
		config, err := latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
		table = latency.NewTableWithConfig(config)
	}

	backing := cache.NewMemoryBacking(runner.Emulator().Memory())
	cacheConfig := cache.DefaultL1DConfig()
	cacheConfig.HitLatency = table.Config().L1HitLatency
	cacheConfig.MissLatency = table.Config().MemoryLatency
	dcache := cache.New(cacheConfig, backing)

	stats := core.New(table, dcache).Replay(runner.Trace())

	fmt.Printf("Cycles: %d\n", stats.Cycles)
	fmt.Printf("Instructions: %d\n", stats.Instructions)
	fmt.Printf("CPI: %.2f\n", stats.CPI())
	fmt.Printf("D-cache: %d hits, %d misses\n", stats.DCache.Hits, stats.DCache.Misses)
}
