package ratelimiter

import "sync"

// Registry maps operation names (e.g. "analyze", "generate") to their
// limiters. Operations without a registered limiter are unlimited.
type Registry interface {
	Get(operation string) (Limiter, bool)
	Set(operation string, limiter Limiter)
}

type mapRegistry struct {
	registry map[string]Limiter
	mu       sync.RWMutex
}

// NewRegistry creates a new in-memory limiter registry.
func NewRegistry() Registry {
	return &mapRegistry{
		registry: make(map[string]Limiter),
	}
}

func (r *mapRegistry) Get(operation string) (Limiter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limiter, ok := r.registry[operation]
	return limiter, ok
}

func (r *mapRegistry) Set(operation string, limiter Limiter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registry[operation] = limiter
}
