package character

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrNotFound is returned when a character name is not registered.
var ErrNotFound = fmt.Errorf("character not found")

// Registry holds the character profiles available to the service. It is
// constructed once at startup and passed to every component that needs it;
// there is no ambient global character set.
type Registry struct {
	profiles map[string]*Profile
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		profiles: make(map[string]*Profile),
		logger:   logger,
	}
}

// Register adds a profile. Re-registering a name replaces the profile.
func (r *Registry) Register(p *Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.Name] = p
	r.logger.Info("registered character",
		zap.String("name", p.Name),
		zap.String("archetype", p.Archetype))
}

// Get returns the profile for a character name.
func (r *Registry) Get(name string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, nil
}

// List returns all profiles sorted by name.
func (r *Registry) List() []*Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
