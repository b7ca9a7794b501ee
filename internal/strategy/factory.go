package strategy

import (
	"errors"

	"options-lab/internal/domain"
)

// Strategy type identifiers accepted by FromConfig.
const (
	TypeMomentumIV = "MOMENTUM_IV"
	TypeFixed      = "FIXED"
)

// Factory errors
var (
	ErrUnknownStrategyType = errors.New("unknown strategy type")
	ErrMissingDirection    = errors.New("FIXED requires a direction")
	ErrInvalidConfidence   = errors.New("FIXED requires confidence in [0, 1]")
)

// Config selects and parameterizes a strategy.
type Config struct {
	StrategyType string // "MOMENTUM_IV" | "FIXED"

	// MOMENTUM_IV parameters; zero values select defaults.
	MomentumIV MomentumIVConfig

	// FIXED parameters.
	FixedDirection  domain.Direction
	FixedConfidence float64
}

// FromConfig creates a Strategy from Config. Validates required
// parameters per strategy type.
func FromConfig(cfg Config) (Strategy, error) {
	switch cfg.StrategyType {
	case TypeMomentumIV:
		return NewMomentumIV(cfg.MomentumIV), nil
	case TypeFixed:
		switch cfg.FixedDirection {
		case domain.DirectionCall, domain.DirectionPut, domain.DirectionNone:
		default:
			return nil, ErrMissingDirection
		}
		if cfg.FixedConfidence < 0 || cfg.FixedConfidence > 1 {
			return nil, ErrInvalidConfidence
		}
		return NewFixed(cfg.FixedDirection, cfg.FixedConfidence), nil
	default:
		return nil, ErrUnknownStrategyType
	}
}
