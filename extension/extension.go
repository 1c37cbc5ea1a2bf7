// Package extension provides the Forge extension adapter for Loansign.
//
// It implements the forge.Extension interface to integrate Loansign
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.loansign" or
// "loansign" keys. The host economy's FundsSource must be injected with
// WithFundsSource; the engine cannot move money without one.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	loansign "github.com/xraph/loansign"
	"github.com/xraph/loansign/store"
	"github.com/xraph/loansign/store/memory"
	"github.com/xraph/loansign/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "loansign"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Peer-to-peer loan engine for game economies"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Loansign as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *loansign.Engine
	store      store.Store
	funds      loansign.FundsSource
	engineOpts []loansign.Option
}

// New creates a new Loansign Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Loansign instance.
// This is nil until Register is called.
func (e *Extension) Engine() *loansign.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the loan engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	// Build engine options from resolved config.
	opts, err := e.buildEngineOpts()
	if err != nil {
		return err
	}

	e.engine = loansign.New(e.store, e.funds, opts...)

	return vessel.Provide(fapp.Container(), func() (*loansign.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("loansign: extension not initialized")
	}

	if !e.config.DisableAutostart {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil && !e.config.DisableAutostart {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("loansign: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs loansign.Option values from the resolved config.
func (e *Extension) buildEngineOpts() ([]loansign.Option, error) {
	opts := make([]loansign.Option, 0, len(e.engineOpts)+4)

	if e.config.SweepInterval > 0 {
		opts = append(opts, loansign.WithSweepInterval(e.config.SweepInterval))
	}
	if e.config.SaveInterval > 0 {
		opts = append(opts, loansign.WithSaveInterval(e.config.SaveInterval))
	}
	if e.config.OfferExpiry > 0 {
		opts = append(opts, loansign.WithOfferTTL(e.config.OfferExpiry))
	}
	if e.config.MaxLateFee != "" {
		feeCap, err := types.NewFromString(e.config.MaxLateFee)
		if err != nil {
			return nil, errors.New("loansign: max_late_fee is not a valid decimal: " + e.config.MaxLateFee)
		}
		opts = append(opts, loansign.WithMaxLateFee(feeCap))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts, nil
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("loansign: configuration is required but not found in config files; " +
				"ensure 'extensions.loansign' or 'loansign' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("loansign: configuration loaded",
		forge.F("disable_autostart", e.config.DisableAutostart),
		forge.F("sweep_interval", e.config.SweepInterval),
		forge.F("save_interval", e.config.SaveInterval),
		forge.F("offer_expiry", e.config.OfferExpiry),
		forge.F("max_late_fee", e.config.MaxLateFee),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.loansign" first (namespaced pattern).
	if cm.IsSet("extensions.loansign") {
		if err := cm.Bind("extensions.loansign", &cfg); err == nil {
			e.Logger().Debug("loansign: loaded config from file",
				forge.F("key", "extensions.loansign"),
			)
			return cfg, true
		}
		e.Logger().Warn("loansign: failed to bind extensions.loansign config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "loansign" key.
	if cm.IsSet("loansign") {
		if err := cm.Bind("loansign", &cfg); err == nil {
			e.Logger().Debug("loansign: loaded config from file",
				forge.F("key", "loansign"),
			)
			return cfg, true
		}
		e.Logger().Warn("loansign: failed to bind loansign config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	if cfg.SaveInterval == 0 {
		cfg.SaveInterval = defaults.SaveInterval
	}
	if cfg.OfferExpiry == 0 {
		cfg.OfferExpiry = defaults.OfferExpiry
	}
	if cfg.MaxLateFee == "" {
		cfg.MaxLateFee = defaults.MaxLateFee
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableAutostart {
		yamlConfig.DisableAutostart = true
	}

	// Duration/string fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.SweepInterval == 0 && programmaticConfig.SweepInterval != 0 {
		yamlConfig.SweepInterval = programmaticConfig.SweepInterval
	}
	if yamlConfig.SaveInterval == 0 && programmaticConfig.SaveInterval != 0 {
		yamlConfig.SaveInterval = programmaticConfig.SaveInterval
	}
	if yamlConfig.OfferExpiry == 0 && programmaticConfig.OfferExpiry != 0 {
		yamlConfig.OfferExpiry = programmaticConfig.OfferExpiry
	}
	if yamlConfig.MaxLateFee == "" && programmaticConfig.MaxLateFee != "" {
		yamlConfig.MaxLateFee = programmaticConfig.MaxLateFee
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
