package router

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/hobnob/pkg/domain"
)

// Built-in router names.
const (
	NameJMESPath = "jmespath"
	NameLua      = "lua"
)

// ErrUnknownRouter is returned when a referenced router was never registered.
var ErrUnknownRouter = errors.New("unknown router")

// ErrRouterDisabled is returned when a registered but disabled router is
// requested. Opt-in routers stay unreachable until explicitly enabled.
var ErrRouterDisabled = errors.New("router is disabled")

// Registry maps router names to implementations. It is an instance, not
// package state: construct one, configure it, and hand it to compile.
//
// The registry freezes on first read. Configuration happens before any run;
// mutating a registry that a run may already be reading returns
// domain.ErrRegistryFrozen instead of racing.
type Registry struct {
	mu      sync.RWMutex
	routers map[string]Router
	enabled map[string]bool
	def     string
	frozen  bool
}

// NewRegistry creates a registry with the built-in routers: "jmespath"
// (enabled, default) and "lua" (disabled).
func NewRegistry() *Registry {
	return &Registry{
		routers: map[string]Router{
			NameJMESPath: JMESPath{},
			NameLua:      Lua{},
		},
		enabled: map[string]bool{
			NameJMESPath: true,
			NameLua:      false,
		},
		def: NameJMESPath,
	}
}

// Register adds a router under name, enabled. Registering over an existing
// name replaces it.
func (r *Registry) Register(name string, rt Router) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("cannot register %q: %w", name, domain.ErrRegistryFrozen)
	}
	r.routers[name] = rt
	r.enabled[name] = true
	return nil
}

// SetDefault selects the router used by transitions that do not name one.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("cannot set default to %q: %w", name, domain.ErrRegistryFrozen)
	}
	if _, ok := r.routers[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownRouter)
	}
	r.def = name
	return nil
}

// Enable marks a registered router as usable.
func (r *Registry) Enable(name string) error {
	return r.setEnabled(name, true)
}

// Disable marks a registered router as unreachable.
func (r *Registry) Disable(name string) error {
	return r.setEnabled(name, false)
}

func (r *Registry) setEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("cannot toggle %q: %w", name, domain.ErrRegistryFrozen)
	}
	if _, ok := r.routers[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownRouter)
	}
	r.enabled[name] = enabled
	return nil
}

// Get resolves a router by name; the empty name resolves the default. The
// first Get freezes the registry.
func (r *Registry) Get(name string) (Router, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true

	if name == "" {
		name = r.def
	}
	rt, ok := r.routers[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownRouter)
	}
	if !r.enabled[name] {
		return nil, fmt.Errorf("%q: %w", name, ErrRouterDisabled)
	}
	return rt, nil
}
