package extension

import (
	"time"

	loansign "github.com/xraph/loansign"
	"github.com/xraph/loansign/plugin"
	"github.com/xraph/loansign/store"
)

// Option configures the Loansign Forge extension.
type Option func(*Extension)

// WithStore sets the store for the loan engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithFundsSource sets the host economy the engine moves money through.
// The engine refuses to start without one.
func WithFundsSource(f loansign.FundsSource) Option {
	return func(e *Extension) {
		e.funds = f
	}
}

// WithEngineOption passes a loansign.Option through to the underlying engine.
func WithEngineOption(opt loansign.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a loansign plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, loansign.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableAutostart prevents the engine from starting during Forge
// startup. The host must call Engine().Start itself.
func WithDisableAutostart() Option {
	return func(e *Extension) { e.config.DisableAutostart = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithSweepInterval sets how often the collection sweep runs.
func WithSweepInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.SweepInterval = d }
}

// WithSaveInterval sets how often the ledger is autosaved.
func WithSaveInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.SaveInterval = d }
}

// WithOfferExpiry sets how long loan offers stay acceptable.
func WithOfferExpiry(d time.Duration) Option {
	return func(e *Extension) { e.config.OfferExpiry = d }
}

// WithMaxLateFee caps the fee assessed on a short collection. The value
// is a decimal string in the game currency.
func WithMaxLateFee(v string) Option {
	return func(e *Extension) { e.config.MaxLateFee = v }
}
