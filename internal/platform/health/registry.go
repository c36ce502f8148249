// Package health runs health checks against the upstreams a process talks
// to. The CLI's health command uses it to report circuit breaker state.
package health

import (
	"context"
	"sort"
	"sync"
)

// Checker is implemented by any component that can report its health.
type Checker interface {
	// Name identifies the component in results.
	Name() string
	// HealthCheck returns nil if healthy.
	HealthCheck(ctx context.Context) error
}

// Registry is a thread-safe set of checkers.
type Registry struct {
	mu       sync.RWMutex
	checkers []Checker
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register adds a checker. Safe for concurrent use.
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker)
}

// CheckAll executes all registered checks and returns results keyed by
// checker name. Nil values indicate healthy components. The slice is copied
// under a read lock so checks run without holding the lock.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	checkers := make([]Checker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	results := make(map[string]error, len(checkers))
	for _, c := range checkers {
		results[c.Name()] = c.HealthCheck(ctx)
	}
	return results
}

// Healthy reports whether every result in results is nil.
func Healthy(results map[string]error) bool {
	for _, err := range results {
		if err != nil {
			return false
		}
	}
	return true
}

// Names returns the keys of results, sorted.
func Names(results map[string]error) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
