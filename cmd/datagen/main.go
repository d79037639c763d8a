package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/graphpath/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		backbone    = flag.Int("backbone", cfg.BackboneLength, "number of segments on the backbone chain")
		chords      = flag.Int("chords", cfg.Chords, "number of shortcut segments between backbone nodes")
		chordSpan   = flag.Int("chord-span", cfg.ChordSpan, "largest backbone distance a chord may bridge")
		branches    = flag.Int("branches", cfg.Branches, "number of dead-end branches")
		branchDepth = flag.Int("branch-depth", cfg.BranchDepth, "maximum segments per branch")
		seed        = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir   = flag.String("output-dir", "seed-data", "directory to write nodes.json and segments.json")
		writeStdout = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		BackboneLength: *backbone,
		Chords:         *chords,
		ChordSpan:      *chordSpan,
		Branches:       *branches,
		BranchDepth:    *branchDepth,
		Seed:           *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d nodes and %d segments into %s (backbone 1 -> %d)\n",
		len(dataset.Nodes), len(dataset.Segments), *outputDir, generator.BackboneEnd(gen.Config()))
}
