package mechanics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OpenDatePolicy selects which leg dates a rolled trade group.
type OpenDatePolicy string

const (
	// OpenDateEarliest dates a rolled trade from its first opening leg,
	// counting the whole campaign duration against the annualized return.
	OpenDateEarliest OpenDatePolicy = "earliest"
	// OpenDateLatest dates a rolled trade from its final opening leg.
	OpenDateLatest OpenDatePolicy = "latest"
)

// Config carries every tunable the engine uses. One immutable value is passed
// explicitly into each stage; stages never reach for globals.
type Config struct {
	// Epsilon is the flatness tolerance on running quantity totals. Broker
	// exports carry fractional-share dust, so exact-zero tests are never used.
	Epsilon float64 `yaml:"epsilon"`

	// RollChainGapDays is the maximum number of days between going flat and
	// re-opening for the two positions to count as one roll chain.
	RollChainGapDays int `yaml:"roll_chain_gap_days"`

	// WheelMinShares is the share count that turns an equity position into a
	// wheel campaign.
	WheelMinShares int `yaml:"wheel_min_shares"`

	// LEAPSDTEThreshold is the days-to-expiry above which a short option is
	// treated as a LEAPS and excluded from short-premium scorecard metrics.
	LEAPSDTEThreshold int `yaml:"leaps_dte_threshold"`

	// DTEAlertWarn and DTEAlertCrit are the days-to-expiry thresholds for
	// open-position expiry alerts.
	DTEAlertWarn int `yaml:"dte_alert_warn"`
	DTEAlertCrit int `yaml:"dte_alert_crit"`

	// AnnReturnCap bounds reported annualized returns, in percent. Very short
	// holds annualize to absurd figures otherwise.
	AnnReturnCap float64 `yaml:"ann_return_cap"`

	// KnownIndexes lists cash-settled index underlyings. Naked shorts on
	// these have no assignment risk, so capital risk falls back to the credit.
	KnownIndexes []string `yaml:"known_indexes"`

	// OpenDatePolicy dates rolled trades from their earliest or latest
	// opening leg.
	OpenDatePolicy OpenDatePolicy `yaml:"open_date_policy"`

	// Lifetime collapses each ticker's full history into a single open
	// campaign ("house money" view) instead of closing campaigns at flat.
	Lifetime bool `yaml:"lifetime"`
}

// DefaultConfig returns the shipped configuration.
func DefaultConfig() Config {
	return Config{
		Epsilon:           1e-9,
		RollChainGapDays:  3,
		WheelMinShares:    100,
		LEAPSDTEThreshold: 90,
		DTEAlertWarn:      14,
		DTEAlertCrit:      5,
		AnnReturnCap:      500,
		KnownIndexes: []string{
			"SPX", "SPXW", "NDX", "RUT", "VIX", "XSP", "NANOS", "DJX", "OEX",
		},
		OpenDatePolicy: OpenDateEarliest,
	}
}

// LoadConfig reads a YAML override file on top of the defaults. Keys absent
// from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values no stage can work with.
func (c Config) Validate() error {
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %g", c.Epsilon)
	}
	if c.RollChainGapDays < 0 {
		return fmt.Errorf("roll_chain_gap_days must not be negative, got %d", c.RollChainGapDays)
	}
	if c.WheelMinShares <= 0 {
		return fmt.Errorf("wheel_min_shares must be positive, got %d", c.WheelMinShares)
	}
	if c.AnnReturnCap <= 0 {
		return fmt.Errorf("ann_return_cap must be positive, got %g", c.AnnReturnCap)
	}
	switch c.OpenDatePolicy {
	case OpenDateEarliest, OpenDateLatest:
	default:
		return fmt.Errorf("open_date_policy must be %q or %q, got %q",
			OpenDateEarliest, OpenDateLatest, c.OpenDatePolicy)
	}
	return nil
}

// Eps returns the flatness tolerance as a Quantity.
func (c Config) Eps() Quantity { return Q(c.Epsilon) }

// IsIndex reports whether the underlying is a known cash-settled index.
func (c Config) IsIndex(underlying string) bool {
	for _, idx := range c.KnownIndexes {
		if idx == underlying {
			return true
		}
	}
	return false
}
