package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ThreeDotsLabs/watermill"

	errspkg "github.com/drblury/routeflow/internal/runtime/errors"
	"github.com/drblury/routeflow/internal/runtime/routing"
)

// Registry maps source names to their builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// DefaultRegistry knows the static and manifest sources.
var DefaultRegistry = NewDefaultRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// NewDefaultRegistry creates a registry with the built-in sources.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(StaticName, buildStatic)
	r.Register(ManifestName, buildManifest)
	return r
}

// NormalizeName returns the registry key for a source name. Names are case
// insensitive and an empty name selects the static source.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StaticName
	}
	return name
}

// Register adds or replaces the builder for name.
func (r *Registry) Register(name string, builder Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[NormalizeName(name)] = builder
}

// Build creates the source selected by cfg.GetSource(). An empty name selects
// the static source.
func (r *Registry) Build(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (routing.Source, error) {
	if cfg == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	name := NormalizeName(cfg.GetSource())

	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("routeflow: unknown source: %q (registered: %v)", name, r.Names())
	}

	return builder(ctx, cfg, logger)
}

// Names returns the registered source names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a source is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[NormalizeName(name)]
	return ok
}

// Register adds a builder to the default registry.
func Register(name string, builder Builder) {
	DefaultRegistry.Register(name, builder)
}

// Build creates a source using the default registry.
func Build(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (routing.Source, error) {
	return DefaultRegistry.Build(ctx, cfg, logger)
}
