// Package config loads the YAML configuration shared by the backtest
// and autotrade commands.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Strategy struct {
	Type              string  `yaml:"type"` // MOMENTUM_IV | FIXED
	MomentumWindow    int     `yaml:"momentum_window"`
	MomentumThreshold float64 `yaml:"momentum_threshold"`
	IVSqueezeThresh   float64 `yaml:"iv_squeeze_threshold"`
	MaxConfidence     float64 `yaml:"max_confidence"`
	BaselineConf      float64 `yaml:"baseline_confidence"`
	FlowThreshold     float64 `yaml:"flow_threshold"`
	MomentumWeight    float64 `yaml:"momentum_weight"`
	IVWeight          float64 `yaml:"iv_weight"`
	NewsWeight        float64 `yaml:"news_weight"`
	FlowWeight        float64 `yaml:"flow_weight"`
	FixedDirection    string  `yaml:"fixed_direction"`
	FixedConfidence   float64 `yaml:"fixed_confidence"`
}

type Risk struct {
	MaxDailyLossPct float64 `yaml:"max_daily_loss_pct"`
	MinConfidence   float64 `yaml:"min_confidence"`
}

type Backtest struct {
	StartingEquity        float64 `yaml:"starting_equity"`
	RiskFraction          float64 `yaml:"risk_fraction"`
	CommissionPerContract float64 `yaml:"commission_per_contract"`
	MaxPositions          int     `yaml:"max_positions"`
}

type AutoTrader struct {
	Tickers           []string `yaml:"tickers"`
	LookbackMinutes   int      `yaml:"lookback_minutes"`
	NewsHours         int      `yaml:"news_hours"`
	Timeframe         string   `yaml:"timeframe"`
	MinConfidence     float64  `yaml:"min_confidence"`
	TradeRiskFraction float64  `yaml:"trade_risk_fraction"`
	MaxPositions      int      `yaml:"max_positions"`
	AccountEquity     float64  `yaml:"account_equity"`
	LiveTrading       bool     `yaml:"live_trading"`
	IncludeNews       bool     `yaml:"include_news"`
	UseCache          bool     `yaml:"use_cache"`
	SleepSeconds      int      `yaml:"sleep_seconds"`
	AuditLogPath      string   `yaml:"audit_log_path"`
	MinAggBars        int      `yaml:"min_agg_bars"`
	MinAggVolume      float64  `yaml:"min_agg_volume"`
	MinAggVWAPTrend   float64  `yaml:"min_agg_vwap_trend"`
}

type Storage struct {
	PostgresDSN   string `yaml:"postgres_dsn"`   // empty selects in-memory stores
	ClickhouseDSN string `yaml:"clickhouse_dsn"` // empty disables bar archival
	CacheDir      string `yaml:"cache_dir"`
}

type Decision struct {
	MinTrades            int     `yaml:"min_trades"`
	MinWinRate           float64 `yaml:"min_win_rate"`
	MinTotalPnL          float64 `yaml:"min_total_pnl"`
	MaxDrawdown          float64 `yaml:"max_drawdown"`
	MaxConsecutiveLosses int     `yaml:"max_consecutive_losses"`
}

type Root struct {
	Strategy    Strategy   `yaml:"strategy"`
	Risk        Risk       `yaml:"risk"`
	Backtest    Backtest   `yaml:"backtest"`
	AutoTrader  AutoTrader `yaml:"autotrader"`
	Storage     Storage    `yaml:"storage"`
	Decision    Decision   `yaml:"decision"`
	MetricsAddr string     `yaml:"metrics_addr"` // e.g. ":9124", empty disables the endpoint
}

func Load(path string) (Root, error) {
	var c Root
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	if c.Strategy.Type == "" {
		c.Strategy.Type = "MOMENTUM_IV"
	}
	if c.AutoTrader.AuditLogPath == "" {
		c.AutoTrader.AuditLogPath = "data/logs/auto_trader.jsonl"
	}
	if c.Storage.CacheDir == "" {
		c.Storage.CacheDir = "data/cache"
	}
	return c, nil
}
