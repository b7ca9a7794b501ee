package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"options-lab/internal/audit"
	"options-lab/internal/autotrader"
	"options-lab/internal/config"
	"options-lab/internal/domain"
	"options-lab/internal/marketdata"
	"options-lab/internal/observability"
	"options-lab/internal/risk"
	"options-lab/internal/snapshot"
	"options-lab/internal/storage"
	"options-lab/internal/storage/memory"
	"options-lab/internal/storage/migrations"
	pgstore "options-lab/internal/storage/postgres"
	"options-lab/internal/strategy"

	chstore "options-lab/internal/storage/clickhouse"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to YAML config (required)")
	snapshotPath := flag.String("snapshot", "", "Path to snapshot JSON document (required)")
	streamURL := flag.String("stream-url", "", "Websocket quote stream endpoint (optional)")
	once := flag.Bool("once", false, "Run a single cycle and exit")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[autotrade] ", log.LstdFlags)

	if *configPath == "" {
		logger.Fatal("--config is required")
	}
	if *snapshotPath == "" {
		logger.Fatal("--snapshot is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
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

	// Serve /metrics when configured
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Printf("serving metrics on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	// Snapshot provider: file source, read-through cache, live overlay
	var provider snapshot.Provider = snapshot.NewFileProvider(*snapshotPath)
	if cfg.AutoTrader.UseCache {
		cache, err := snapshot.NewCache(cfg.Storage.CacheDir)
		if err != nil {
			logger.Fatalf("create cache: %v", err)
		}
		provider = snapshot.NewCachedProvider(provider, cache, logger)
	}
	if *streamURL != "" {
		stream, err := marketdata.NewStream(ctx, *streamURL, nil)
		if err != nil {
			logger.Fatalf("connect quote stream: %v", err)
		}
		defer stream.Close()
		provider = marketdata.NewOverlayProvider(provider, stream)
	}

	// Strategy
	strat, err := strategy.FromConfig(strategyConfig(cfg))
	if err != nil {
		logger.Fatalf("create strategy: %v", err)
	}

	// Audit sink
	sink, err := audit.NewJSONLSink(cfg.AutoTrader.AuditLogPath)
	if err != nil {
		logger.Fatalf("open audit log: %v", err)
	}
	defer sink.Close()

	// Persistence
	var intentStore storage.IntentRecordStore = memory.NewIntentRecordStore()
	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("run postgres migrations: %v", err)
		}
		intentStore = pgstore.NewIntentRecordStore(pool)
	}

	var barStore storage.BarStore
	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			logger.Fatalf("setup clickhouse: %v", err)
		}
		defer conn.Close()
		barStore = chstore.NewBarStore(conn)
	}

	trader, err := autotrader.NewAutoTrader(autotrader.Options{
		Provider:    provider,
		Strategy:    strat,
		RiskManager: risk.NewManager(cfg.Risk.MaxDailyLossPct, cfg.Risk.MinConfidence),
		Audit:       sink,
		IntentStore: intentStore,
		BarStore:    barStore,
		Logger:      logger,
		Config: autotrader.Config{
			Tickers:           cfg.AutoTrader.Tickers,
			LookbackMinutes:   cfg.AutoTrader.LookbackMinutes,
			NewsHours:         cfg.AutoTrader.NewsHours,
			Timeframe:         cfg.AutoTrader.Timeframe,
			MinConfidence:     cfg.AutoTrader.MinConfidence,
			TradeRiskFraction: cfg.AutoTrader.TradeRiskFraction,
			MaxPositions:      cfg.AutoTrader.MaxPositions,
			AccountEquity:     cfg.AutoTrader.AccountEquity,
			LiveTrading:       cfg.AutoTrader.LiveTrading,
			IncludeNews:       cfg.AutoTrader.IncludeNews,
			UseCache:          cfg.AutoTrader.UseCache,
			SleepSeconds:      cfg.AutoTrader.SleepSeconds,
			MinAggBars:        cfg.AutoTrader.MinAggBars,
			MinAggVolume:      cfg.AutoTrader.MinAggVolume,
			MinAggVWAPTrend:   cfg.AutoTrader.MinAggVWAPTrend,
		},
	})
	if err != nil {
		logger.Fatalf("create autotrader: %v", err)
	}

	if *once {
		intents, err := trader.RunOnce(ctx)
		if err != nil {
			logger.Fatalf("run cycle: %v", err)
		}
		logger.Printf("cycle produced %d intents", len(intents))
		return
	}

	if err := trader.RunLoop(ctx); err != nil && ctx.Err() == nil {
		logger.Fatalf("trading loop stopped: %v", err)
	}
	logger.Println("shutdown complete")
}

// strategyConfig maps the YAML strategy section to strategy.Config.
func strategyConfig(cfg config.Root) strategy.Config {
	return strategy.Config{
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
}
