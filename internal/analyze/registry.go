package analyze

import (
	"reflect"
	"strings"
	"sync"
)

// Registry resolves type names used by configuration files:
//   - "store.Order" (short)
//   - "struct-mapper/store.Order" (full)
//   - "Order" (name only, when unambiguous).
type Registry struct {
	mu    sync.RWMutex
	types map[TypeID]reflect.Type
}

// Register makes named types resolvable. Pointers are dereferenced; unnamed types are ignored.
func (r *Registry) Register(types ...reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.types == nil {
		r.types = make(map[TypeID]reflect.Type)
	}

	for _, t := range types {
		t = Deref(t)
		if t == nil || t.Name() == "" {
			continue
		}

		r.types[IDOf(t)] = t
	}
}

// Lookup resolves a type ID string.
func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.TrimPrefix(strings.TrimSpace(name), "*")

	// Name-only: match when exactly one registered type carries the name.
	if !strings.Contains(name, ".") {
		var found reflect.Type

		for id, t := range r.types {
			if id.Name != name {
				continue
			}

			if found != nil {
				return nil, false
			}

			found = t
		}

		return found, found != nil
	}

	lastDot := strings.LastIndex(name, ".")
	pkgStr, typeName := name[:lastDot], name[lastDot+1:]

	// 1) exact match (for fully qualified import path)
	if t, ok := r.types[TypeID{PkgPath: pkgStr, Name: typeName}]; ok {
		return t, true
	}

	// 2) suffix match (for short forms like "store.Order" vs "struct-mapper/store.Order")
	for id, t := range r.types {
		if id.Name == typeName && strings.HasSuffix(id.PkgPath, "/"+pkgStr) {
			return t, true
		}
	}

	return nil, false
}

// Names returns the short names of every registered type.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for id := range r.types {
		names = append(names, id.Short())
	}

	return names
}

// Register makes named types resolvable through Lookup.
func (m *ReflectModel) Register(types ...reflect.Type) {
	m.registry.Register(types...)
}

// Lookup resolves a registered type by name.
func (m *ReflectModel) Lookup(name string) (reflect.Type, bool) {
	return m.registry.Lookup(name)
}

// RegisteredNames returns the short names of every registered type.
func (m *ReflectModel) RegisteredNames() []string {
	return m.registry.Names()
}
