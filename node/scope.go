package node

import (
	"reflect"
	"slices"
	"strings"

	"struct-mapper/internal/mapping"
	"struct-mapper/internal/plan"
	"struct-mapper/options"
)

// call is the state of one top-level mapping call.
type call struct {
	engine *Engine
	rs     options.RuleSet
	rules  options.RuleSetSettings
	// createNew rule sets build nested targets instead of reusing existing ones.
	createNew bool

	tracked map[trackKey]reflect.Value
	depth   map[plan.Key]int
	indexes map[uintptr]*keyIndex
}

type trackKey struct {
	ptr      uintptr
	src, dst reflect.Type
}

func newCall(e *Engine, rs options.RuleSet) *call {
	return &call{
		engine:    e,
		rs:        rs,
		rules:     rs.Settings(),
		createNew: rs == options.CreateNew || rs == options.Project,
	}
}

// track keys src, a base value, by its address. Values without one are not tracked.
func (c *call) track(src reflect.Value, op *plan.ObjectPlan) (trackKey, bool) {
	if !op.Track || !src.CanAddr() {
		return trackKey{}, false
	}

	return trackKey{ptr: src.Addr().Pointer(), src: op.SourceType, dst: op.TargetType}, true
}

func (c *call) seen(k trackKey) (reflect.Value, bool) {
	v, ok := c.tracked[k]
	return v, ok
}

func (c *call) remember(k trackKey, target reflect.Value) {
	if c.tracked == nil {
		c.tracked = make(map[trackKey]reflect.Value)
	}

	c.tracked[k] = target
}

// scope is one position of a running mapping. Object scopes (frames) own a source and
// a target; member, element and entry scopes only name a position below them.
type scope struct {
	call   *call
	parent *scope

	frame  bool
	source reflect.Value // frame source, pointers removed
	target reflect.Value // addressable frame target; invalid before construction
	view   *dictView     // keyed frames read entries through it

	segment string // ".Name", "[2]", "[key]"; the root carries the root name
	index   int    // element index, mapping.NoIndex elsewhere

	// keyBase is the entry key a keyed value below this scope is read from.
	keyBase string
	// inPlace scopes populate an existing value that cannot be replaced.
	inPlace bool
}

var _ mapping.Context = (*scope)(nil)

func (s *scope) child(segment string) *scope {
	return &scope{call: s.call, parent: s, segment: segment, index: mapping.NoIndex}
}

func (s *scope) element(i int, segment string) *scope {
	return &scope{call: s.call, parent: s, segment: segment, index: i}
}

func (s *scope) newFrame(source reflect.Value) *scope {
	return &scope{call: s.call, parent: s, frame: true, source: source, index: mapping.NoIndex}
}

// frameScope returns the nearest object scope at or above s.
func (s *scope) frameScope() *scope {
	for f := s; f != nil; f = f.parent {
		if f.frame {
			return f
		}
	}

	return nil
}

// up returns the object scope n objects above the nearest one.
func (s *scope) up(n int) *scope {
	f := s.frameScope()

	for ; f != nil && n > 0; n-- {
		f = f.parent.frameScope()
	}

	return f
}

func (s *scope) isRoot() bool {
	for p := s; p != nil; p = p.parent {
		if p.frame {
			return false
		}
	}

	return true
}

// Source implements mapping.Context. Struct sources are always returned as pointers.
func (s *scope) Source() any {
	f := s.frameScope()
	if f == nil || !f.source.IsValid() || !f.source.CanInterface() {
		return nil
	}

	if f.source.Kind() != reflect.Struct {
		return f.source.Interface()
	}

	if f.source.CanAddr() {
		return f.source.Addr().Interface()
	}

	ptr := reflect.New(f.source.Type())
	ptr.Elem().Set(f.source)

	return ptr.Interface()
}

// Target implements mapping.Context.
func (s *scope) Target() any {
	f := s.frameScope()
	if f == nil || !f.target.IsValid() {
		return nil
	}

	return f.target.Addr().Interface()
}

// Parent implements mapping.Context.
func (s *scope) Parent() mapping.Context {
	f := s.frameScope()
	if f == nil || f.parent == nil {
		return nil
	}

	if p := f.parent.frameScope(); p != nil {
		return p
	}

	return nil
}

// RuleSet implements mapping.Context.
func (s *scope) RuleSet() options.RuleSet {
	return s.call.rs
}

// Path implements mapping.Context.
func (s *scope) Path() string {
	var segments []string

	for p := s; p != nil; p = p.parent {
		if p.segment != "" {
			segments = append(segments, p.segment)
		}
	}

	slices.Reverse(segments)

	return strings.Join(segments, "")
}

// ElementIndex implements mapping.Context.
func (s *scope) ElementIndex() int {
	for p := s; p != nil; p = p.parent {
		if p.index != mapping.NoIndex {
			return p.index
		}
	}

	return mapping.NoIndex
}
