package explorer

import (
	"fmt"
	"sync"
)

// ChartHook lets packages register or replace chart providers during
// init().
type ChartHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []ChartHook
)

// RegisterChartHook registers a hook executed against new registries.
func RegisterChartHook(h ChartHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry maps chart kinds to their providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[ChartKind]ChartProvider
}

// NewRegistry builds a registry with the built-in ECharts providers and
// applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{providers: map[ChartKind]ChartProvider{}}
	for _, kind := range ChartKinds() {
		_ = reg.RegisterProvider(kind, NewEChartsProvider(kind))
	}
	_ = reg.ApplyHooks()
	return reg
}

// ApplyHooks executes registered chart hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterProvider associates a provider with a chart kind, replacing
// any existing registration.
func (r *Registry) RegisterProvider(kind ChartKind, provider ChartProvider) error {
	if kind == "" {
		return fmt.Errorf("explorer: chart kind is required to register provider")
	}
	if provider == nil {
		return fmt.Errorf("explorer: provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[kind] = provider
	return nil
}

// Provider fetches the provider for a chart kind.
func (r *Registry) Provider(kind ChartKind) (ChartProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[kind]
	return provider, ok
}

// Kinds returns the registered chart kinds in display order.
func (r *Registry) Kinds() []ChartKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ChartKind
	for _, kind := range ChartKinds() {
		if _, ok := r.providers[kind]; ok {
			out = append(out, kind)
		}
	}
	return out
}
