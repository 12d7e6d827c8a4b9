package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ReviewInsights/internal/config"
	"ReviewInsights/internal/ports"
)

// Factory builds a Generator for one provider (OpenAI, Anthropic, Gemini, etc.).
type Factory interface {
	Name() string
	New(ctx context.Context, cfg config.GenerationConfig) (ports.Generator, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc struct {
	ID    string
	Build func(ctx context.Context, cfg config.GenerationConfig) (ports.Generator, error)
}

// Name identifies the provider inside the registry.
func (f FactoryFunc) Name() string { return f.ID }

// New builds the generator.
func (f FactoryFunc) New(ctx context.Context, cfg config.GenerationConfig) (ports.Generator, error) {
	return f.Build(ctx, cfg)
}

// Registry keeps a mapping from provider names to their factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds or replaces a provider factory.
func (r *Registry) Register(factory Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[strings.ToLower(factory.Name())] = factory
}

// Resolve returns a factory by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Factory, error) {
	if factory, ok := r.factories[strings.ToLower(strings.TrimSpace(name))]; ok {
		return factory, nil
	}
	return nil, fmt.Errorf("provider %q is not registered (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Build resolves cfg.Provider and constructs its generator.
func (r *Registry) Build(ctx context.Context, cfg config.GenerationConfig) (ports.Generator, error) {
	factory, err := r.Resolve(cfg.Provider)
	if err != nil {
		return nil, err
	}
	gen, err := factory.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", factory.Name(), err)
	}
	return gen, nil
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
