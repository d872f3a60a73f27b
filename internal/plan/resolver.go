package plan

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/mapping"
)

// DataSourceSet is the resolved source list of one target member.
type DataSourceSet struct {
	Sources  []*DataSource
	Ignored  bool
	IgnoreIf []mapping.Condition
	// Reason and Suggestions explain an empty, unignored set.
	Reason      string
	Suggestions []string
}

// ResolveDataSources lists the sources of q, a member of the object compiled in fr.
//
// Configuration is looked up from the nearest enclosing object outwards, with the
// member path relative to each of them. Configured sources come first, in their
// configured order; the first unconditional one ends the list. The convention match
// is appended when every configured source is conditional. An unconditional ignore
// anywhere on the way wins over everything.
func (s *session) ResolveDataSources(q *QualifiedMember, fr *frame) DataSourceSet {
	var (
		set           DataSourceSet
		unconditional bool
	)

	up := 0

	for f := fr; f != nil; f, up = f.parent, up+1 {
		path := q.RelativePath(f.member)
		if path == "" {
			continue
		}

		for _, ig := range s.c.Store.IgnoresFor(f.source, f.target, path, s.key.RuleSet) {
			if ig.Condition == nil {
				return DataSourceSet{Ignored: true}
			}

			set.IgnoreIf = append(set.IgnoreIf, ig.Condition)
		}

		if unconditional {
			continue
		}

		for _, entry := range s.c.Store.DataSourcesFor(f.source, f.target, path, s.key.RuleSet) {
			ds, err := s.configured(entry, q, fr, f, up)
			if err != nil {
				s.c.Log.V(1).Info("configured source skipped", "member", q.Path, "origin", entry.Origin, "error", err.Error())
				continue
			}

			set.Sources = append(set.Sources, ds)

			if !entry.IsConditional() {
				unconditional = true
				break
			}
		}
	}

	if unconditional {
		return set
	}

	sources, reason, suggestions := s.convention(q, fr)
	set.Sources = append(set.Sources, sources...)

	if len(set.Sources) == 0 {
		set.Reason = reason
		set.Suggestions = suggestions
	}

	return set
}

// member plans the population of q from the sources resolved for it. Sources whose
// value cannot be planned are dropped.
func (s *session) member(q *QualifiedMember, fr *frame) (*MemberPlan, error) {
	set := s.ResolveDataSources(q, fr)

	mp := &MemberPlan{
		Target:   q,
		Ignored:  set.Ignored,
		IgnoreIf: set.IgnoreIf,
		InPlace:  q.Member != nil && q.Member.IsReadOnly,
	}

	if mp.Ignored {
		return mp, nil
	}

	reason := set.Reason

	for _, ds := range set.Sources {
		value, err := s.sourceValue(ds, q, fr)
		if err != nil {
			if !errors.Is(err, ErrUnmappable) {
				return nil, err
			}

			reason = err.Error()
			s.c.Log.V(2).Info("source dropped", "member", q.Path, "source", ds.Description, "reason", reason)

			continue
		}

		ds.Value = value
		mp.Sources = append(mp.Sources, ds)
	}

	if len(mp.Sources) == 0 {
		mp.miss = &Unmapped{Path: q.Path, Reason: reason, Suggestions: set.Suggestions}
	}

	return mp, nil
}

// sourceValue plans the conversion of what ds reads into the value of q.
func (s *session) sourceValue(ds *DataSource, q *QualifiedMember, fr *frame) (*ValuePlan, error) {
	from := fr.up(ds.FrameUp)
	if from == nil {
		return nil, unmappable("no enclosing object %d levels up", ds.FrameUp)
	}

	switch {
	case ds.Kind == SourceEntries:
		vp := &ValuePlan{SourceType: from.source, TargetType: q.Type}
		target := analyze.Deref(q.Type)

		switch analyze.Classify(target) {
		case analyze.TypeKindComplex:
			return s.objectValue(vp, from.source, target, q, fr, ds.Description, objectOrigin{keyed: true})
		case analyze.TypeKindEnumerable:
			return s.indexed(vp, from.source, target, q, fr, ds.Description)
		default:
			return nil, unmappable("%s is not rebuilt from entries", analyze.TypeString(q.Type))
		}
	case ds.Kind == SourceMember && len(ds.Path) == 0:
		vp := &ValuePlan{SourceType: from.source, TargetType: q.Type}
		origin := objectOrigin{prefix: from.prefix + q.Member.Name, sameSource: true}

		return s.objectValue(vp, from.source, analyze.Deref(q.Type), q, fr, from.sourcePath, origin)
	default:
		return s.value(ds.ReadType(from.source), q.Type, q, fr, ds.Description)
	}
}

func (f *frame) up(n int) *frame {
	for ; f != nil && n > 0; n-- {
		f = f.parent
	}

	return f
}

// configured turns a configuration entry found at frame f into a data source of q,
// whose own object is fr.
func (s *session) configured(entry *mapping.DataSource, q *QualifiedMember, fr, f *frame, up int) (*DataSource, error) {
	ds := &DataSource{
		Configured: true,
		Name:       entry.Name,
		Condition:  entry.Condition,
		Order:      entry.Order,
		After:      entry.After,
		FrameUp:    up,
	}

	switch {
	case entry.Value != nil:
		ds.Kind = SourceFunc
		ds.Func = entry.Value
		ds.Description = "func"
	case entry.HasConstant:
		ds.Kind = SourceConstant
		ds.Constant = reflect.ValueOf(entry.Constant)
		ds.Description = fmt.Sprintf("%v", entry.Constant)

		if !ds.Constant.IsValid() {
			ds.Constant = reflect.Zero(q.Type)
		}
	case f.keyed:
		if strings.Contains(entry.SourcePath, "[]") {
			return nil, fmt.Errorf("source path %q: keyed sources take fixed indices only", entry.SourcePath)
		}

		ds.Kind = SourceEntry
		ds.Key = strings.ReplaceAll(entry.SourcePath, ".", f.separator)
		ds.Description = f.sourcePath + "[" + ds.Key + "]"
	default:
		path := entry.SourcePath
		read := f

		// "Items[].Title" reads the element the member's object is built from.
		if i := strings.LastIndex(path, "[]."); i >= 0 {
			read, ds.FrameUp = elementFrame(fr)
			if read == nil {
				return nil, fmt.Errorf("source path %q: member is not inside a collection element", path)
			}

			path = path[i+len("[]."):]
		}

		steps, err := s.steps(read.source, path)
		if err != nil {
			return nil, err
		}

		ds.Kind = SourceMember
		ds.Path = steps
		ds.Description = joinPath(read.sourcePath, path)
	}

	return ds, nil
}

// elementFrame finds the nearest object built from a collection element.
func elementFrame(fr *frame) (*frame, int) {
	up := 0

	for f := fr; f != nil; f, up = f.parent, up+1 {
		if f.member.IsEnumerableElement {
			return f, up
		}
	}

	return nil, 0
}

// steps resolves a configured source path against source.
func (s *session) steps(source reflect.Type, path string) ([]Step, error) {
	fp, err := mapping.ParsePath(path)
	if err != nil {
		return nil, err
	}

	info := s.c.Model.TypeOf(source)
	steps := make([]Step, 0, len(fp.Segments))

	for i, seg := range fp.Segments {
		if info == nil || info.Kind != analyze.TypeKindComplex {
			return nil, fmt.Errorf("source path %q: %s has no members", path, analyze.TypeString(source))
		}

		m := info.Member(seg.Name)
		if m == nil || !m.IsReadable {
			return nil, fmt.Errorf("source path %q: %s has no readable member %q", path, analyze.TypeString(info.Type), seg.Name)
		}

		step := Step{Member: m, Index: mapping.NoIndex}
		next := m.Type

		if seg.IsSlice {
			switch {
			case seg.Index != mapping.NoIndex:
				elem := analyze.Deref(m.Type)
				if elem.Kind() != reflect.Slice && elem.Kind() != reflect.Array {
					return nil, fmt.Errorf("source path %q: %s is not indexable", path, seg.Name)
				}

				step.Index = seg.Index
				next = elem.Elem()
			case i != len(fp.Segments)-1:
				return nil, fmt.Errorf("source path %q: open index before the last segment", path)
			}
		}

		steps = append(steps, step)
		source = next
		info = s.c.Model.TypeOf(next)
	}

	return steps, nil
}
