package plan

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync/atomic"

	"github.com/go-logr/logr"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/mapping"
	"struct-mapper/internal/match"
	"struct-mapper/options"
	"struct-mapper/primitive"
)

// Casts exposes user converter funcs to the compiler. A registered cast wins over
// every other strategy for its exact type pair.
type Casts interface {
	CanCast(source, target reflect.Type) bool
}

// Compiler builds mapping plans from the configuration store. It is safe for
// concurrent use; each Compile call runs its own session.
type Compiler struct {
	Model   analyze.TypeModel
	Matcher *match.Matcher
	Store   *mapping.Store
	Enums   *primitive.EnumRegistry
	Casts   Casts
	Log     logr.Logger

	conv atomic.Pointer[converterEntry]
}

type converterEntry struct {
	fingerprint uint64
	conv        *primitive.Converter
}

// NewCompiler creates a compiler over model and store.
func NewCompiler(model analyze.TypeModel, store *mapping.Store, enums *primitive.EnumRegistry, log logr.Logger) *Compiler {
	if enums == nil {
		enums = primitive.NewEnumRegistry()
	}

	scoring := &primitive.Converter{
		Culture:    primitive.CurrentCulture(),
		Categories: primitive.CategoryAll,
		Enums:      enums,
	}

	return &Compiler{
		Model:   model,
		Matcher: match.NewMatcher(model, scoring),
		Store:   store,
		Enums:   enums,
		Log:     log,
	}
}

// Converter returns the simple-type converter for the settings of a configuration.
// One converter is kept per fingerprint.
func (c *Compiler) Converter(fingerprint uint64, settings options.Settings) (*primitive.Converter, error) {
	if e := c.conv.Load(); e != nil && e.fingerprint == fingerprint {
		return e.conv, nil
	}

	culture := primitive.CurrentCulture()
	if settings.Culture != "" {
		parsed, err := primitive.ParseCulture(settings.Culture)
		if err != nil {
			return nil, err
		}

		culture = parsed
	}

	categories := primitive.CategoryAll
	if len(settings.Conversions) > 0 {
		parsed, err := primitive.ParseCategories(settings.Conversions)
		if err != nil {
			return nil, err
		}

		categories = parsed
	}

	conv := &primitive.Converter{
		Culture:       culture,
		Categories:    categories,
		StrictNumeric: settings.StrictNumeric,
		Lenient:       settings.LenientParsing,
		Enums:         c.Enums,
	}
	c.conv.Store(&converterEntry{fingerprint: fingerprint, conv: conv})

	return conv, nil
}

// Compile builds the plan mapping source onto target under rs with the current configuration.
func (c *Compiler) Compile(source, target reflect.Type, rs options.RuleSet) (*MappingPlan, error) {
	return c.CompileKey(NewKey(source, target, rs, c.Store.Fingerprint()))
}

// CompileKey builds the plan of key. Recursive occurrences of the same type pair point
// back at the plan under construction.
func (c *Compiler) CompileKey(key Key) (*MappingPlan, error) {
	settings := c.Store.Settings()

	conv, err := c.Converter(key.Fingerprint, settings)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", key, err)
	}

	p := &MappingPlan{
		Key:       key,
		Root:      NewRoot(key.Target),
		Converter: conv,
		Settings:  settings,
	}

	s := &session{
		c:        c,
		key:      key,
		plan:     p,
		rs:       key.RuleSet.Settings(),
		settings: settings,
		conv:     conv,
		repeats:  make(map[Key]*RepeatRef),
	}

	target := key.Target
	if analyze.Classify(target) == analyze.TypeKindComplex {
		target = reflect.PointerTo(target)
	}

	value, err := s.value(key.Source, target, p.Root, nil, "")
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", key, err)
	}

	p.Value = value

	if len(s.strict) > 0 {
		return nil, &ValidationError{Key: key, Unmapped: s.strict}
	}

	c.Log.V(1).Info("compiled plan", "key", key.String(), "unmapped", len(p.Unmapped), "repeats", len(p.Repeats))

	return p, nil
}

// session is one compilation.
type session struct {
	c        *Compiler
	key      Key
	plan     *MappingPlan
	rs       options.RuleSetSettings
	settings options.Settings
	conv     *primitive.Converter
	repeats  map[Key]*RepeatRef
	strict   []string
}

// frame is an object under compilation: where its source and target are.
type frame struct {
	member     *QualifiedMember
	source     reflect.Type // base source type
	target     reflect.Type // base target type
	prefix     string
	keyed      bool
	separator  string
	sourcePath string // relative to the plan root source
	parent     *frame
}

// objectOrigin says how an object reads its source.
type objectOrigin struct {
	prefix     string
	sameSource bool
	keyed      bool
}

func unmappable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnmappable, fmt.Sprintf(format, args...))
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}

	return base + "." + name
}

func (s *session) object(src, dst reflect.Type, at *QualifiedMember, parent *frame, srcPath string, o objectOrigin) (*ObjectPlan, error) {
	fr := &frame{
		member:     at,
		source:     src,
		target:     dst,
		prefix:     o.prefix,
		keyed:      o.keyed,
		sourcePath: srcPath,
		parent:     parent,
	}

	if parent != nil && parent.keyed && o.keyed && parent.source == src {
		fr.separator = parent.separator
	} else {
		fr.separator = s.c.Store.Separator(src, dst)
	}

	obj := &ObjectPlan{
		Member:     at,
		SourceType: src,
		TargetType: dst,
		Prefix:     o.prefix,
		SameSource: o.sameSource,
		Keyed:      o.keyed,
		Separator:  fr.separator,
		Track:      s.rs.AllowObjectTracking && !s.settings.DisableObjectTracking && !o.keyed && !o.sameSource,
	}

	if s.rs.AllowCallbacks {
		obj.Before = s.c.Store.CallbacksFor(src, dst, s.key.RuleSet, mapping.BeforeMapping)
		obj.After = s.c.Store.CallbacksFor(src, dst, s.key.RuleSet, mapping.AfterMapping)
	}

	construction, consumed, err := s.construction(fr)
	if err != nil {
		return nil, err
	}

	obj.Construction = construction

	for _, m := range s.c.Model.TypeOf(dst).Targets() {
		q := at.Child(m)

		if consumed[match.NormalizeIdent(m.Name)] {
			obj.Members = append(obj.Members, &MemberPlan{Target: q, Consumed: true})
			continue
		}

		mp, err := s.member(q, fr)
		if err != nil {
			return nil, err
		}

		if mp.miss != nil {
			s.unmapped(*mp.miss, fr)
		}

		obj.Members = append(obj.Members, mp)
	}

	obj.Members = orderMembers(obj.Members)

	return obj, nil
}

func (s *session) unmapped(u Unmapped, fr *frame) {
	s.plan.Unmapped = append(s.plan.Unmapped, u)

	if s.settings.ValidateOnCompile || s.c.Store.Pair(fr.source, fr.target).ThrowIfIncomplete {
		s.strict = append(s.strict, u.Path)
	}
}

// createsNew reports whether the rule set must build an instance for at.
func (s *session) createsNew(at *QualifiedMember) bool {
	if at.Member != nil && at.Member.IsReadOnly {
		return false
	}

	return s.key.RuleSet == options.CreateNew || s.key.RuleSet == options.Project
}

// construction picks how instances of the frame target are obtained: a factory, then
// the greediest constructor whose parameters all resolve, then the zero value when
// the type has no constructor at all.
func (s *session) construction(fr *frame) (*Construction, map[string]bool, error) {
	if s.rs.AllowFactories {
		if f := s.c.Store.FactoryFor(fr.source, fr.target); f != nil {
			return &Construction{Kind: ConstructFactory, Factory: f.Func}, nil, nil
		}
	}

	ctors := s.c.Model.Constructors(fr.target)

	for _, ctor := range ctors {
		params := ctor.Params
		if fr.keyed && !ctor.HasNames() {
			if params = s.inferParamNames(ctor, fr.target); params == nil {
				continue
			}
		}

		args, err := s.ctorArgs(ctor, params, fr)
		if err != nil {
			return nil, nil, err
		}

		if args == nil {
			continue
		}

		consumed := make(map[string]bool, len(params))
		for _, param := range params {
			if param.Name != "" {
				consumed[match.NormalizeIdent(param.Name)] = true
			}
		}

		return &Construction{Kind: ConstructConstructor, Constructor: ctor, Args: args}, consumed, nil
	}

	if len(ctors) == 0 && fr.target.Kind() == reflect.Struct {
		return &Construction{Kind: ConstructZero}, nil, nil
	}

	reason := "no constructor has all its parameters mapped"
	if len(ctors) == 0 {
		reason = "type has no constructor"
	}

	if s.createsNew(fr.member) {
		return nil, nil, &ConstructionError{Path: fr.member.Path, Key: s.key, Reason: reason}
	}

	fr.member.MarkUnconstructable()
	s.c.Log.V(1).Info("target only populated in place", "path", fr.member.Path, "reason", reason)

	return &Construction{Kind: ConstructNone}, nil, nil
}

// inferParamNames names each unnamed parameter of ctor after the only member of target
// with the same type, so dictionary entries can feed it. It returns nil when a
// parameter has no such member or more than one.
func (s *session) inferParamNames(ctor *analyze.Constructor, target reflect.Type) []*analyze.MemberInfo {
	info := s.c.Model.TypeOf(target)
	if info == nil {
		return nil
	}

	params := make([]*analyze.MemberInfo, len(ctor.Params))

	for i, param := range ctor.Params {
		if param.Name != "" {
			params[i] = param
			continue
		}

		var found *analyze.MemberInfo

		for _, m := range info.Members {
			if m.Kind == analyze.MemberCtorParam || m.Type != param.Type {
				continue
			}

			if found != nil {
				return nil
			}

			found = m
		}

		if found == nil {
			return nil
		}

		named := *param
		named.Name, named.GoName = found.Name, found.GoName
		params[i] = &named
	}

	return params
}

// ctorArgs resolves every parameter of ctor, or returns nil. params are the
// parameters of ctor, possibly with inferred names.
func (s *session) ctorArgs(ctor *analyze.Constructor, params []*analyze.MemberInfo, fr *frame) ([]*MemberPlan, error) {
	var positional []match.Match
	if !ctor.HasNames() && !fr.keyed {
		positional = s.c.Matcher.MatchParams(fr.source, ctor, fr.prefix)
	}

	args := make([]*MemberPlan, len(params))

	for i, param := range params {
		q := fr.member.Child(param)
		if param.Name == "" {
			q.Path = fr.member.Path + "(" + strconv.Itoa(i) + ")"
		}

		var mp *MemberPlan

		if positional != nil {
			mp = &MemberPlan{Target: q}

			if positional[i].Matched() {
				ds := s.matchSource(positional[i], fr)

				value, err := s.sourceValue(ds, q, fr)
				if err != nil && !errors.Is(err, ErrUnmappable) {
					return nil, err
				}

				if err == nil {
					ds.Value = value
					mp.Sources = append(mp.Sources, ds)
				}
			}
		} else {
			var err error
			if mp, err = s.member(q, fr); err != nil {
				return nil, err
			}
		}

		if len(mp.Sources) == 0 {
			return nil, nil
		}

		args[i] = mp
	}

	return args, nil
}

// repeat returns the shared reference for a recursive type pair.
func (s *session) repeat(src, dst reflect.Type) *RepeatRef {
	key := s.key.With(src, dst)
	if ref, ok := s.repeats[key]; ok {
		return ref
	}

	rule, _ := s.c.Store.Recursion(dst)

	ref := &RepeatRef{Key: key, MaxDepth: rule.MaxDepth}
	if ref.MaxDepth == 0 {
		ref.MaxDepth = s.settings.MaxRecursionDepth
	}

	if key == s.key {
		ref.Plan = s.plan
	}

	s.repeats[key] = ref
	s.plan.Repeats = append(s.plan.Repeats, ref)

	return ref
}
