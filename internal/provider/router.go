package provider

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Router holds the configured providers and routes each character's
// requests to its bound provider, falling back to the default.
type Router struct {
	providers map[string]Provider
	bindings  map[string]string // character name -> provider ID
	defaults  string
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewRouter creates an empty provider router.
func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		providers: make(map[string]Provider),
		bindings:  make(map[string]string),
		logger:    logger,
	}
}

// Register adds a provider. The first registered provider becomes the
// default until SetDefault overrides it.
func (r *Router) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID()] = p
	if r.defaults == "" {
		r.defaults = p.ID()
	}
	r.logger.Info("registered provider", zap.String("id", p.ID()), zap.String("name", p.Name()))
}

// SetDefault sets the default provider ID.
func (r *Router) SetDefault(providerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults = providerID
}

// Bind routes a character's requests to a specific provider.
func (r *Router) Bind(characterName, providerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[characterName] = providerID
}

// Generate routes a request for the given character.
func (r *Router) Generate(ctx context.Context, characterName string, req *GenerateRequest) (*GenerateResponse, error) {
	r.mu.RLock()
	providerID, bound := r.bindings[characterName]
	if !bound {
		providerID = r.defaults
	}
	p, ok := r.providers[providerID]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no provider registered for %q", ErrServiceUnavailable, characterName)
	}

	resp, err := p.Generate(ctx, req)
	if err != nil {
		r.logger.Warn("provider call failed",
			zap.String("provider", providerID),
			zap.String("character", characterName),
			zap.Error(err))
		return nil, err
	}
	return resp, nil
}
