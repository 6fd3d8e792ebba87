// Command compare runs a judging tournament: it loads applicant project
// files, schedules balanced pairs with a seeded round-robin rotation, asks
// an LLM judge to pick a winner for each pair, and writes the outcomes as
// a comparisons CSV ready for the rank command.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/filfund/pairrank/infrastructure/llm"
	"github.com/filfund/pairrank/infrastructure/middleware"
	"github.com/filfund/pairrank/infrastructure/tournament"
	"github.com/filfund/pairrank/internal/application"
)

func main() {
	var (
		projectsDir = flag.String("projects", "projects", "Directory of applicant JSON files")
		outputPath  = flag.String("output", "comparisons.csv", "Comparisons CSV to write")
		configPath  = flag.String("config", "", "Optional YAML configuration file")
		question    = flag.String("question", "", "Override the judging question")
		metricsAddr = flag.String("metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9090)")
	)
	flag.Parse()

	config, err := application.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	tc := config.Tournament

	apiKey := os.Getenv(tc.APIKeyEnv)
	if apiKey == "" {
		log.Fatalf("API key environment variable %s is not set", tc.APIKeyEnv)
	}

	metrics := middleware.NewPrometheusMetrics()
	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				log.Printf("Metrics server stopped: %v", err)
			}
		}()
	}

	guard, err := middleware.NewBudgetGuard(
		middleware.Budget{MaxTokens: tc.Budget.MaxTokens, MaxCalls: tc.Budget.MaxCalls},
		middleware.NewOTelBudgetObserver(metrics, tc.Model),
	)
	if err != nil {
		log.Fatalf("Failed to create budget guard: %v", err)
	}

	// Budget sits outermost so exhausted runs stop before queueing on the
	// rate limiter; retries stay innermost so each attempt is paced.
	chain := []llm.Middleware{
		guard.Middleware(),
		llm.TracingMiddleware("pairrank-compare"),
		llm.MetricsMiddleware(metrics),
	}
	if tc.RequestsPerSecond > 0 {
		burst := tc.Burst
		if burst < 1 {
			burst = 1
		}
		chain = append(chain, llm.RateLimitMiddleware(rate.Limit(tc.RequestsPerSecond), burst))
	}
	chain = append(chain, llm.RetryMiddleware(3, time.Second, 30*time.Second))

	client, err := llm.NewClient(tc.Provider, llm.ClientConfig{
		APIKey:     apiKey,
		Model:      tc.Model,
		Middleware: chain,
	})
	if err != nil {
		log.Fatalf("Failed to create %s client: %v", tc.Provider, err)
	}

	registry, err := tournament.LoadRegistry(*projectsDir)
	if err != nil {
		log.Fatalf("Failed to load projects: %v", err)
	}

	pairs, err := tournament.GeneratePairs(registry.Names(), tournament.ScheduleConfig{
		MinAppearances: tc.MinAppearances,
		Seed:           tc.Seed,
	})
	if err != nil {
		log.Fatalf("Failed to schedule pairs: %v", err)
	}

	judgeConfig := tournament.DefaultJudgeConfig()
	judgeConfig.MaxConcurrency = tc.MaxConcurrency
	if *question != "" {
		judgeConfig.Question = *question
	}

	judge, err := tournament.NewJudge(client, judgeConfig)
	if err != nil {
		log.Fatalf("Failed to create judge: %v", err)
	}

	fmt.Printf("Judging %d pairs across %d projects with %s...\n",
		len(pairs), registry.Len(), client.GetModel())

	outcomes, usage, err := judge.Run(context.Background(), registry, pairs)
	if err != nil {
		log.Fatalf("Judging failed after %d calls (%d tokens): %v",
			usage.Calls, usage.Tokens, err)
	}

	if err := tournament.WriteComparisonsFile(*outputPath, outcomes); err != nil {
		log.Fatalf("Failed to write comparisons: %v", err)
	}

	fmt.Printf("Wrote %d comparisons to %s\n", len(outcomes), *outputPath)
	fmt.Printf("Usage: %d tokens across %d calls\n", usage.Tokens, usage.Calls)
}
