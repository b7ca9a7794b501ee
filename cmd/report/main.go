package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"options-lab/internal/config"
	"options-lab/internal/decision"
	"options-lab/internal/reporting"
	pgstore "options-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	strategyID := flag.String("strategy-id", "", "Strategy ID to report on (required)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (required)")
	configPath := flag.String("config", "", "Path to YAML config (decision criteria)")
	format := flag.String("format", "markdown", "Output format: markdown, csv")
	outputPath := flag.String("output", "", "Write to this path instead of stdout")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *strategyID == "" {
		logger.Fatal("--strategy-id is required")
	}
	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	var cfg config.Root
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	tradeStore := pgstore.NewTradeRecordStore(pool)
	trades, err := tradeStore.GetByStrategy(ctx, *strategyID)
	if err != nil {
		logger.Fatalf("load trades: %v", err)
	}
	if len(trades) == 0 {
		logger.Fatalf("no trades recorded for strategy %s", *strategyID)
	}

	evaluator := decision.NewEvaluator(decision.Criteria{
		MinTrades:            cfg.Decision.MinTrades,
		MinWinRate:           cfg.Decision.MinWinRate,
		MinTotalPnL:          cfg.Decision.MinTotalPnL,
		MaxDrawdown:          cfg.Decision.MaxDrawdown,
		MaxConsecutiveLosses: cfg.Decision.MaxConsecutiveLosses,
	})
	report := reporting.BuildFromTrades(*strategyID, trades, evaluator)

	var rendered string
	switch *format {
	case "markdown":
		rendered = reporting.RenderMarkdown(report)
	case "csv":
		rendered = reporting.RenderCSV(report.Trades)
	default:
		logger.Fatalf("unknown format: %s (want markdown or csv)", *format)
	}

	if *outputPath != "" {
		if err := os.WriteFile(*outputPath, []byte(rendered), 0o644); err != nil {
			logger.Fatalf("write output: %v", err)
		}
		logger.Printf("wrote %s report to %s", *format, *outputPath)
		return
	}
	os.Stdout.WriteString(rendered)
}
