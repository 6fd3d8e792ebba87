// Command rank turns a pairwise comparisons CSV into a ranked leaderboard
// with grant allocations. It fits a Bradley-Terry model over the
// comparisons, orders projects by fitted strength, and distributes the
// configured budget down the ranking on a power-law curve.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/filfund/pairrank/internal/application"
)

func main() {
	var (
		inputPath  = flag.String("input", "comparisons.csv", "Comparisons CSV to rank")
		outputPath = flag.String("output", "leaderboard.csv", "Leaderboard CSV to write (- for stdout)")
		configPath = flag.String("config", "", "Optional YAML configuration file")
	)
	flag.Parse()

	config, err := application.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pipeline, err := application.NewPipeline(config)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	out := os.Stdout
	if *outputPath != "-" {
		f, err := os.Create(*outputPath)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	if err := pipeline.RunFile(context.Background(), *inputPath, out); err != nil {
		log.Fatalf("Ranking failed: %v", err)
	}

	if *outputPath != "-" {
		fmt.Printf("Leaderboard written to %s\n", *outputPath)
	}
}
