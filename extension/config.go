package extension

import "time"

// Config holds the Loansign extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.loansign" or "loansign" keys).
type Config struct {
	// DisableAutostart prevents the engine from starting during Forge
	// startup. The host must call Engine().Start itself.
	DisableAutostart bool `json:"disable_autostart" mapstructure:"disable_autostart" yaml:"disable_autostart"`

	// SweepInterval is how often the collection sweep walks the ledger
	// (default: 1m).
	SweepInterval time.Duration `json:"sweep_interval" mapstructure:"sweep_interval" yaml:"sweep_interval"`

	// SaveInterval is how often the ledger is autosaved to the store
	// (default: 5m).
	SaveInterval time.Duration `json:"save_interval" mapstructure:"save_interval" yaml:"save_interval"`

	// OfferExpiry is how long loan offers stay acceptable (default: 5m).
	OfferExpiry time.Duration `json:"offer_expiry" mapstructure:"offer_expiry" yaml:"offer_expiry"`

	// MaxLateFee caps the fee assessed on a short collection, as a
	// decimal string in the game currency (default: "25").
	MaxLateFee string `json:"max_late_fee" mapstructure:"max_late_fee" yaml:"max_late_fee"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SweepInterval: time.Minute,
		SaveInterval:  5 * time.Minute,
		OfferExpiry:   5 * time.Minute,
		MaxLateFee:    "25",
	}
}
