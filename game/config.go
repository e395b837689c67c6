package game

import (
	"errors"
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/stat/distuv"
)

// A child-count draw must land within max_children at least this often near
// the root, otherwise the resampling loop practically never ends.
const minCapAcceptance = 1e-3

// Config holds the parameters of the synthetic game.
type Config struct {
	RootMean float64 `toml:"root_mean"`
	RootSD   float64 `toml:"root_sd"`
	// RootChildren fixes the root's branching factor. Zero draws it from the
	// child-count process.
	RootChildren int `toml:"root_children"`

	// The child-count process is Poisson with rate exp(NCAlpha + depth*NCBeta).
	NCAlpha float64 `toml:"nc_alpha"`
	NCBeta  float64 `toml:"nc_beta"`
	// MaxChildren rejects and redraws counts above it. Zero means no cap.
	MaxChildren int `toml:"max_children"`

	// Shape of the Beta prior on varphi2.
	BetaA float64 `toml:"beta_a"`
	BetaB float64 `toml:"beta_b"`
}

// DefaultConfig returns parameters fitted to the reference tile-matching game.
func DefaultConfig() Config {
	return Config{
		RootMean: 213.493,
		RootSD:   65,
		NCAlpha:  3.966,
		NCBeta:   -0.0346,
		BetaA:    2,
		BetaB:    2,
	}
}

// LoadConfig decodes a TOML file over the defaults and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.RootSD < 0 {
		errs = append(errs, fmt.Errorf("root_sd %v is negative", c.RootSD))
	}
	if c.RootChildren < 0 {
		errs = append(errs, fmt.Errorf("root_children %d is negative", c.RootChildren))
	}
	if c.MaxChildren < 0 {
		errs = append(errs, fmt.Errorf("max_children %d is negative", c.MaxChildren))
	}
	if c.MaxChildren > 0 {
		rate := math.Exp(max(c.NCAlpha, c.NCAlpha+c.NCBeta))
		if p := (distuv.Poisson{Lambda: rate}).CDF(float64(c.MaxChildren)); p < minCapAcceptance {
			errs = append(errs, fmt.Errorf("max_children %d is far below the child-count rate %.1f (accepted with probability %.2g)",
				c.MaxChildren, rate, p))
		}
	}
	if c.BetaA <= 0 || c.BetaB <= 0 {
		errs = append(errs, fmt.Errorf("beta shape (%v, %v) must be positive", c.BetaA, c.BetaB))
	}
	return errors.Join(errs...)
}
