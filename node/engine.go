// Package node executes compiled mapping plans. Each plan becomes a tree of closures
// over reflect values, built once per plan key.
package node

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"

	"struct-mapper/internal/mapping"
	"struct-mapper/internal/plan"
	"struct-mapper/options"
)

// Plans provides compiled plans by key.
type Plans interface {
	GetOrCompile(key plan.Key) (*plan.MappingPlan, error)
}

// Engine executes mapping plans. Each plan is turned into a tree of closures once and
// shared by every later call with the same key. Safe for concurrent use.
type Engine struct {
	plans Plans
	store *mapping.Store
	casts *Casters
	log   logr.Logger

	programs sync.Map // plan.Key -> *program
	inflight singleflight.Group
	compiled atomic.Int64
}

// program is the executable form of a plan.
type program struct {
	plan *plan.MappingPlan
	run  valueFunc
}

// NewEngine creates an engine over plans. casts may be nil.
func NewEngine(plans Plans, store *mapping.Store, casts *Casters, log logr.Logger) *Engine {
	if casts == nil {
		casts = NewCasters()
	}

	return &Engine{plans: plans, store: store, casts: casts, log: log}
}

// Casters returns the user converter funcs the engine calls.
func (e *Engine) Casters() *Casters {
	return e.casts
}

// Compiled counts the plans turned into executable funcs.
func (e *Engine) Compiled() int64 {
	return e.compiled.Load()
}

// Key returns the plan key of mapping a source of type source onto target under rs
// with the current configuration.
func (e *Engine) Key(source, target reflect.Type, rs options.RuleSet) plan.Key {
	return plan.NewKey(source, target, rs, e.store.Fingerprint())
}

// Map maps source onto a value of type target. existing, when valid, is populated
// instead of a new instance: a pointer for complex targets. The result has type target.
func (e *Engine) Map(source reflect.Value, target reflect.Type, rs options.RuleSet, existing reflect.Value) (reflect.Value, error) {
	for source.IsValid() && source.Kind() == reflect.Interface {
		source = source.Elem()
	}

	if !source.IsValid() || (source.Kind() == reflect.Ptr && source.IsNil()) {
		if existing.IsValid() {
			return adapt(existing, target), nil
		}

		return reflect.Zero(target), nil
	}

	key := e.Key(source.Type(), target, rs)

	prog, err := e.program(key)
	if err != nil {
		return reflect.Value{}, err
	}

	root := &scope{call: newCall(e, rs), segment: prog.plan.Root.Path, index: mapping.NoIndex}

	out, err := prog.run(root, source, existing)
	if err != nil {
		return reflect.Value{}, err
	}

	return adapt(out, target), nil
}

// Program returns the plan executed for key, compiling it when needed.
func (e *Engine) Program(key plan.Key) (*plan.MappingPlan, error) {
	prog, err := e.program(key)
	if err != nil {
		return nil, err
	}

	return prog.plan, nil
}

func (e *Engine) program(key plan.Key) (*program, error) {
	if p, ok := e.programs.Load(key); ok {
		return p.(*program), nil
	}

	v, err, _ := e.inflight.Do(key.ID(), func() (any, error) {
		if p, ok := e.programs.Load(key); ok {
			return p, nil
		}

		mp, err := e.plans.GetOrCompile(key)
		if err != nil {
			return nil, err
		}

		b := &builder{engine: e, plan: mp}
		prog := &program{plan: mp, run: b.value(mp.Value)}

		actual, loaded := e.programs.LoadOrStore(key, prog)
		if !loaded {
			e.compiled.Add(1)
			e.log.V(1).Info("compiled mapping func", "key", key.String())
		}

		return actual, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*program), nil
}
