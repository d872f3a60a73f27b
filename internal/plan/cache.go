package plan

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Cache keeps compiled plans by key. Reads are lock-free; concurrent requests for a
// missing key compile it once. Entries are never replaced or evicted, and failed
// compilations are not kept.
type Cache struct {
	compile func(Key) (*MappingPlan, error)

	plans    sync.Map // Key -> *MappingPlan
	inflight singleflight.Group
	compiles atomic.Int64
}

// NewCache creates a cache filled by compile.
func NewCache(compile func(Key) (*MappingPlan, error)) *Cache {
	return &Cache{compile: compile}
}

// GetOrCompile returns the plan of key, compiling it on first use.
func (c *Cache) GetOrCompile(key Key) (*MappingPlan, error) {
	if p, ok := c.plans.Load(key); ok {
		return p.(*MappingPlan), nil
	}

	v, err, _ := c.inflight.Do(key.ID(), func() (any, error) {
		if p, ok := c.plans.Load(key); ok {
			return p, nil
		}

		c.compiles.Add(1)

		p, err := c.compile(key)
		if err != nil {
			return nil, err
		}

		actual, _ := c.plans.LoadOrStore(key, p)

		return actual, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*MappingPlan), nil
}

// Lookup returns the plan of key if it was compiled.
func (c *Cache) Lookup(key Key) (*MappingPlan, bool) {
	p, ok := c.plans.Load(key)
	if !ok {
		return nil, false
	}

	return p.(*MappingPlan), true
}

// Compiles counts compilations, failed ones included.
func (c *Cache) Compiles() int64 {
	return c.compiles.Load()
}

// Len counts cached plans.
func (c *Cache) Len() int {
	n := 0

	c.plans.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}
