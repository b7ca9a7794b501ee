package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"options-lab/internal/backtest"
	"options-lab/internal/config"
	"options-lab/internal/decision"
	"options-lab/internal/domain"
	"options-lab/internal/normalize"
	"options-lab/internal/reporting"
	"options-lab/internal/risk"
	"options-lab/internal/snapshot"
	"options-lab/internal/storage"
	"options-lab/internal/storage/memory"
	"options-lab/internal/storage/migrations"
	pgstore "options-lab/internal/storage/postgres"
	"options-lab/internal/strategy"
)

func main() {
	// Parse flags
	snapshotPath := flag.String("snapshot", "", "Path to snapshot JSON document (required)")
	configPath := flag.String("config", "", "Path to YAML config")
	strategyType := flag.String("strategy", "", "Strategy: MOMENTUM_IV, FIXED (overrides config)")
	fixedDirection := flag.String("fixed-direction", "", "Direction for FIXED strategy: CALL, PUT, NONE")
	fixedConfidence := flag.Float64("fixed-confidence", 0, "Confidence for FIXED strategy")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	persistResult := flag.Bool("persist", false, "Persist trade records to storage")

	// Output
	outputJSON := flag.Bool("json", false, "Output stats as JSON")
	reportPath := flag.String("report", "", "Write Markdown report to this path")
	csvPath := flag.String("csv", "", "Write trade CSV to this path")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	if *snapshotPath == "" {
		logger.Fatal("--snapshot is required")
	}

	// Load config; flags override it
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

	// Build strategy
	strat, err := strategy.FromConfig(strategyConfig(cfg, *strategyType, *fixedDirection, *fixedConfidence))
	if err != nil {
		logger.Fatalf("create strategy: %v", err)
	}

	// Create trade store when persistence is requested
	var tradeStore storage.TradeRecordStore
	if *persistResult {
		dsn := *postgresDSN
		if dsn == "" {
			dsn = cfg.Storage.PostgresDSN
		}
		if dsn == "" {
			logger.Printf("no postgres DSN configured, persisting to in-memory store")
			tradeStore = memory.NewTradeRecordStore()
		} else {
			pool, err := pgstore.NewPool(ctx, dsn)
			if err != nil {
				logger.Fatalf("connect to postgres: %v", err)
			}
			defer pool.Close()
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				logger.Fatalf("run postgres migrations: %v", err)
			}
			tradeStore = pgstore.NewTradeRecordStore(pool)
		}
	}

	// Load and normalize the snapshot
	provider := snapshot.NewFileProvider(*snapshotPath)
	snap, err := provider.Collect(ctx, snapshot.Request{})
	if err != nil {
		logger.Fatalf("load snapshot: %v", err)
	}
	contexts := normalize.ContextsFromSnapshot(snap)
	if len(contexts) == 0 {
		logger.Fatal("snapshot contains no usable tickers")
	}
	logger.Printf("loaded %d contexts from %s", len(contexts), *snapshotPath)

	// Run the backtest
	runner := backtest.NewRunner(backtest.Options{
		Strategy:    strat,
		RiskManager: risk.NewManager(cfg.Risk.MaxDailyLossPct, cfg.Risk.MinConfidence),
		Config: backtest.Config{
			StartingEquity:        cfg.Backtest.StartingEquity,
			RiskFraction:          cfg.Backtest.RiskFraction,
			CommissionPerContract: cfg.Backtest.CommissionPerContract,
			MaxPositions:          cfg.Backtest.MaxPositions,
		},
		TradeStore: tradeStore,
	})

	result, err := runner.Run(ctx, contexts)
	if err != nil {
		logger.Fatalf("run backtest: %v", err)
	}

	// Build report artifacts
	evaluator := decision.NewEvaluator(decision.Criteria{
		MinTrades:            cfg.Decision.MinTrades,
		MinWinRate:           cfg.Decision.MinWinRate,
		MinTotalPnL:          cfg.Decision.MinTotalPnL,
		MaxDrawdown:          cfg.Decision.MaxDrawdown,
		MaxConsecutiveLosses: cfg.Decision.MaxConsecutiveLosses,
	})
	report := reporting.Build(strat.Name(), result, evaluator)

	if *reportPath != "" {
		if err := os.WriteFile(*reportPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
			logger.Fatalf("write report: %v", err)
		}
		logger.Printf("wrote report to %s", *reportPath)
	}
	if *csvPath != "" {
		if err := os.WriteFile(*csvPath, []byte(reporting.RenderCSV(report.Trades)), 0o644); err != nil {
			logger.Fatalf("write csv: %v", err)
		}
		logger.Printf("wrote trades to %s", *csvPath)
	}

	// Print stats
	if *outputJSON {
		out, err := json.MarshalIndent(result.Stats, "", "  ")
		if err != nil {
			logger.Fatalf("marshal stats: %v", err)
		}
		os.Stdout.Write(out)
		os.Stdout.WriteString("\n")
	} else {
		logger.Printf("final_equity=%.2f return_pct=%.2f max_drawdown=%.4f num_trades=%d decision=%s",
			result.Stats.FinalEquity, result.Stats.ReturnPct,
			result.Stats.MaxDrawdown, result.Stats.NumTrades,
			report.Decision.Decision)
	}
}

// strategyConfig merges the YAML strategy section with flag overrides.
func strategyConfig(cfg config.Root, strategyType, fixedDirection string, fixedConfidence float64) strategy.Config {
	sc := strategy.Config{
		StrategyType: cfg.Strategy.Type,
		MomentumIV: strategy.MomentumIVConfig{
			LookbackBars:       cfg.Strategy.MomentumWindow,
			MomentumThreshold:  cfg.Strategy.MomentumThreshold,
			IVSqueezeThreshold: cfg.Strategy.IVSqueezeThresh,
			MaxConfidence:      cfg.Strategy.MaxConfidence,
			BaselineConfidence: cfg.Strategy.BaselineConf,
			FlowThreshold:      cfg.Strategy.FlowThreshold,
			MomentumWeight:     cfg.Strategy.MomentumWeight,
			IVWeight:           cfg.Strategy.IVWeight,
			NewsWeight:         cfg.Strategy.NewsWeight,
			FlowWeight:         cfg.Strategy.FlowWeight,
		},
		FixedDirection:  domain.Direction(cfg.Strategy.FixedDirection),
		FixedConfidence: cfg.Strategy.FixedConfidence,
	}
	if strategyType != "" {
		sc.StrategyType = strings.ToUpper(strategyType)
	}
	if sc.StrategyType == "" {
		sc.StrategyType = strategy.TypeMomentumIV
	}
	if fixedDirection != "" {
		sc.FixedDirection = domain.Direction(strings.ToUpper(fixedDirection))
	}
	if fixedConfidence != 0 {
		sc.FixedConfidence = fixedConfidence
	}
	return sc
}
