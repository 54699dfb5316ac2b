// Package observability provides hooks for metrics and logging of layer
// toggling.
//
// The controller and the panel draw pass report events through hook
// interfaces without depending on a specific backend. Hosts register an
// implementation at startup; the default is a no-op.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    hooks, _ := prom.New(prometheus.DefaultRegisterer)
//	    observability.SetControllerHooks(hooks)
//	    observability.SetPanelHooks(hooks)
//	    // ... run host
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Controller().OnActivate(ctx, "next", "layer", touched)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Controller Hooks
// =============================================================================

// ControllerHooks receives events from the layer visibility controller.
type ControllerHooks interface {
	// OnActivate records an applied affordance. action is "next", "plus" or
	// "minus", kind the node classification, touched the number of renderer
	// flags written.
	OnActivate(ctx context.Context, action, kind string, touched int)

	// OnCompositionAdded records a composition map append.
	OnCompositionAdded(ctx context.Context, key string)
}

// =============================================================================
// Panel Hooks
// =============================================================================

// PanelHooks receives events from a panel draw pass.
type PanelHooks interface {
	// OnDrawPass records one pass over the visible rows.
	OnDrawPass(ctx context.Context, rows, decorated int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopControllerHooks is a no-op implementation of ControllerHooks.
type NoopControllerHooks struct{}

func (NoopControllerHooks) OnActivate(context.Context, string, string, int) {}
func (NoopControllerHooks) OnCompositionAdded(context.Context, string)      {}

// NoopPanelHooks is a no-op implementation of PanelHooks.
type NoopPanelHooks struct{}

func (NoopPanelHooks) OnDrawPass(context.Context, int, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	controllerHooks ControllerHooks = NoopControllerHooks{}
	panelHooks      PanelHooks      = NoopPanelHooks{}
	hooksMu         sync.RWMutex
)

// SetControllerHooks registers custom controller hooks.
// This should be called once at application startup.
func SetControllerHooks(h ControllerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		controllerHooks = h
	}
}

// SetPanelHooks registers custom panel hooks.
// This should be called once at application startup.
func SetPanelHooks(h PanelHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		panelHooks = h
	}
}

// Controller returns the registered controller hooks.
func Controller() ControllerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return controllerHooks
}

// Panel returns the registered panel hooks.
func Panel() PanelHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return panelHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	controllerHooks = NoopControllerHooks{}
	panelHooks = NoopPanelHooks{}
}
