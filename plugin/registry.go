package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/loansign/loan"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit             []OnInit
	onShutdown         []OnShutdown
	onOfferCreated     []OnOfferCreated
	onOfferAccepted    []OnOfferAccepted
	onOfferDeclined    []OnOfferDeclined
	onLoanCreated      []OnLoanCreated
	onPaymentCollected []OnPaymentCollected
	onLateFeeAssessed  []OnLateFeeAssessed
	onLoanPaidOff      []OnLoanPaidOff
	onSweepCompleted   []OnSweepCompleted
	onSnapshotSaved    []OnSnapshotSaved
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnOfferCreated); ok {
		r.onOfferCreated = append(r.onOfferCreated, v)
	}
	if v, ok := p.(OnOfferAccepted); ok {
		r.onOfferAccepted = append(r.onOfferAccepted, v)
	}
	if v, ok := p.(OnOfferDeclined); ok {
		r.onOfferDeclined = append(r.onOfferDeclined, v)
	}
	if v, ok := p.(OnLoanCreated); ok {
		r.onLoanCreated = append(r.onLoanCreated, v)
	}
	if v, ok := p.(OnPaymentCollected); ok {
		r.onPaymentCollected = append(r.onPaymentCollected, v)
	}
	if v, ok := p.(OnLateFeeAssessed); ok {
		r.onLateFeeAssessed = append(r.onLateFeeAssessed, v)
	}
	if v, ok := p.(OnLoanPaidOff); ok {
		r.onLoanPaidOff = append(r.onLoanPaidOff, v)
	}
	if v, ok := p.(OnSweepCompleted); ok {
		r.onSweepCompleted = append(r.onSweepCompleted, v)
	}
	if v, ok := p.(OnSnapshotSaved); ok {
		r.onSnapshotSaved = append(r.onSnapshotSaved, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnOfferCreated)(nil)).Elem(), "OnOfferCreated")
	checkInterface(reflect.TypeOf((*OnOfferAccepted)(nil)).Elem(), "OnOfferAccepted")
	checkInterface(reflect.TypeOf((*OnOfferDeclined)(nil)).Elem(), "OnOfferDeclined")
	checkInterface(reflect.TypeOf((*OnLoanCreated)(nil)).Elem(), "OnLoanCreated")
	checkInterface(reflect.TypeOf((*OnPaymentCollected)(nil)).Elem(), "OnPaymentCollected")
	checkInterface(reflect.TypeOf((*OnLateFeeAssessed)(nil)).Elem(), "OnLateFeeAssessed")
	checkInterface(reflect.TypeOf((*OnLoanPaidOff)(nil)).Elem(), "OnLoanPaidOff")
	checkInterface(reflect.TypeOf((*OnSweepCompleted)(nil)).Elem(), "OnSweepCompleted")
	checkInterface(reflect.TypeOf((*OnSnapshotSaved)(nil)).Elem(), "OnSnapshotSaved")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitOfferCreated emits an offer created event.
func (r *Registry) EmitOfferCreated(ctx context.Context, offer *loan.Offer) {
	r.mu.RLock()
	plugins := r.onOfferCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOfferCreated(ctx, offer)
		}); err != nil {
			r.logger.Warn("plugin OnOfferCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitOfferAccepted emits an offer accepted event.
func (r *Registry) EmitOfferAccepted(ctx context.Context, offer *loan.Offer) {
	r.mu.RLock()
	plugins := r.onOfferAccepted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOfferAccepted(ctx, offer)
		}); err != nil {
			r.logger.Warn("plugin OnOfferAccepted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitOfferDeclined emits an offer declined event.
func (r *Registry) EmitOfferDeclined(ctx context.Context, offer *loan.Offer) {
	r.mu.RLock()
	plugins := r.onOfferDeclined
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOfferDeclined(ctx, offer)
		}); err != nil {
			r.logger.Warn("plugin OnOfferDeclined failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLoanCreated emits a loan created event.
func (r *Registry) EmitLoanCreated(ctx context.Context, l *loan.Loan) {
	r.mu.RLock()
	plugins := r.onLoanCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLoanCreated(ctx, l)
		}); err != nil {
			r.logger.Warn("plugin OnLoanCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentCollected emits a payment collected event.
func (r *Registry) EmitPaymentCollected(ctx context.Context, l *loan.Loan, payment *loan.Payment) {
	r.mu.RLock()
	plugins := r.onPaymentCollected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentCollected(ctx, l, payment)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentCollected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLateFeeAssessed emits a late fee assessed event.
func (r *Registry) EmitLateFeeAssessed(ctx context.Context, l *loan.Loan, fee *loan.Fee) {
	r.mu.RLock()
	plugins := r.onLateFeeAssessed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLateFeeAssessed(ctx, l, fee)
		}); err != nil {
			r.logger.Warn("plugin OnLateFeeAssessed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitLoanPaidOff emits a loan paid off event.
func (r *Registry) EmitLoanPaidOff(ctx context.Context, l *loan.Loan) {
	r.mu.RLock()
	plugins := r.onLoanPaidOff
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLoanPaidOff(ctx, l)
		}); err != nil {
			r.logger.Warn("plugin OnLoanPaidOff failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSweepCompleted emits a sweep completed event.
func (r *Registry) EmitSweepCompleted(ctx context.Context, collected int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onSweepCompleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSweepCompleted(ctx, collected, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnSweepCompleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSnapshotSaved emits a snapshot saved event.
func (r *Registry) EmitSnapshotSaved(ctx context.Context, count int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onSnapshotSaved
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSnapshotSaved(ctx, count, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnSnapshotSaved failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block collection or shutdown.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
