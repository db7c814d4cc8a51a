package layout

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/errors"
)

// Default gaps between shapes.
const (
	DefaultHorizontalGap = 10.0
	DefaultVerticalGap   = 40.0
)

// Config holds the two spacing parameters of the engine.
type Config struct {
	// HorizontalGap is the minimum free space between two vertices of a layer.
	HorizontalGap float64 `json:"horizontal_gap" toml:"horizontal_gap" koanf:"horizontal_gap"`
	// VerticalGap is the free space between the bottom of a layer and the top
	// of the next one.
	VerticalGap float64 `json:"vertical_gap" toml:"vertical_gap" koanf:"vertical_gap"`
}

// DefaultConfig returns the default gaps.
func DefaultConfig() Config {
	return Config{HorizontalGap: DefaultHorizontalGap, VerticalGap: DefaultVerticalGap}
}

// Validate checks that both gaps are finite and non-negative.
func (c Config) Validate() error {
	if err := errors.ValidateDimension("horizontal gap", c.HorizontalGap); err != nil {
		return err
	}
	return errors.ValidateDimension("vertical gap", c.VerticalGap)
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the logger for debug and warning records.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
