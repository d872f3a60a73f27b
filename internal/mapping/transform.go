package mapping

import (
	"fmt"
	"slices"
	"sync"
)

// TransformRegistry holds the Go functions mapping files refer to by name.
type TransformRegistry struct {
	mu         sync.RWMutex
	values     map[string]ValueFunc
	conditions map[string]Condition
	factories  map[string]Factory
	callbacks  map[string]Callback
}

// NewTransformRegistry creates a new empty registry.
func NewTransformRegistry() *TransformRegistry {
	return &TransformRegistry{
		values:     make(map[string]ValueFunc),
		conditions: make(map[string]Condition),
		factories:  make(map[string]Factory),
		callbacks:  make(map[string]Callback),
	}
}

// AddValue registers a value func used by `transform:`.
func (r *TransformRegistry) AddValue(name string, fn ValueFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[name] = fn
}

// AddCondition registers a condition used by `condition:`.
func (r *TransformRegistry) AddCondition(name string, fn Condition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conditions[name] = fn
}

// AddFactory registers a factory used by `factory:`.
func (r *TransformRegistry) AddFactory(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = fn
}

// AddCallback registers a callback used by `before:` and `after:`.
func (r *TransformRegistry) AddCallback(name string, fn Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.callbacks[name] = fn
}

// Value returns the named value func.
func (r *TransformRegistry) Value(name string) (ValueFunc, error) {
	return lookup(r, r.values, "transform", name)
}

// Condition returns the named condition.
func (r *TransformRegistry) Condition(name string) (Condition, error) {
	return lookup(r, r.conditions, "condition", name)
}

// Factory returns the named factory.
func (r *TransformRegistry) Factory(name string) (Factory, error) {
	return lookup(r, r.factories, "factory", name)
}

// Callback returns the named callback.
func (r *TransformRegistry) Callback(name string) (Callback, error) {
	return lookup(r, r.callbacks, "callback", name)
}

// Names returns all registered names, sorted.
func (r *TransformRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string

	for name := range r.values {
		names = append(names, name)
	}

	for name := range r.conditions {
		names = append(names, name)
	}

	for name := range r.factories {
		names = append(names, name)
	}

	for name := range r.callbacks {
		names = append(names, name)
	}

	slices.Sort(names)

	return slices.Compact(names)
}

func lookup[F any](r *TransformRegistry, m map[string]F, kind, name string) (F, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := m[name]
	if !ok {
		return fn, fmt.Errorf("%s %q is not registered", kind, name)
	}

	return fn, nil
}
