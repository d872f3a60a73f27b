package plan

import (
	"struct-mapper/internal/analyze"
	"struct-mapper/internal/mapping"
	"struct-mapper/internal/match"
)

// convention proposes the source of q found by naming conventions, together with the
// reason and suggestions when there is none.
func (s *session) convention(q *QualifiedMember, fr *frame) ([]*DataSource, string, []string) {
	if q.Member == nil || q.Member.Name == "" {
		return nil, "member has no name to match", nil
	}

	if fr.keyed {
		return s.entrySources(q, fr), "", nil
	}

	info := s.c.Model.TypeOf(fr.source)
	if info == nil || info.Kind != analyze.TypeKindComplex {
		return nil, analyze.TypeString(fr.source) + " has no members", nil
	}

	m := s.c.Matcher.MatchMember(fr.source, q.Member, fr.prefix)
	if m.Matched() {
		return []*DataSource{s.matchSource(m, fr)}, "", nil
	}

	// ShippingAddress from ShippingAddressLine1, ShippingAddressCity, ...
	name := fr.prefix + q.Member.Name
	if analyze.Classify(q.Type) == analyze.TypeKindComplex && s.c.Matcher.HasPrefixedMembers(fr.source, name) {
		ds := &DataSource{
			Kind:        SourceMember,
			Match:       match.MatchFlattened,
			Description: joinPath(fr.sourcePath, name+"*"),
		}

		return []*DataSource{ds}, "", nil
	}

	return nil, "no source member matches", m.Suggestions
}

// matchSource turns a convention match into a data source read from fr.
func (s *session) matchSource(m match.Match, fr *frame) *DataSource {
	steps := make([]Step, len(m.SourcePath))
	for i, member := range m.SourcePath {
		steps[i] = Step{Member: member, Index: mapping.NoIndex}
	}

	return &DataSource{
		Kind:        SourceMember,
		Path:        steps,
		Match:       m.Kind,
		Description: joinPath(fr.sourcePath, m.SourceName()),
	}
}

// entrySources reads q from a dictionary: the entry named after it, and for complex
// and collection members the entries below that name ("Address.Line1", "Items[0]").
func (s *session) entrySources(q *QualifiedMember, fr *frame) []*DataSource {
	key := q.Member.Name
	sources := []*DataSource{{
		Kind:        SourceEntry,
		Key:         key,
		Match:       match.MatchCaseInsensitive,
		Description: fr.sourcePath + "[" + key + "]",
	}}

	switch analyze.Classify(q.Type) {
	case analyze.TypeKindComplex, analyze.TypeKindEnumerable:
		sources = append(sources, &DataSource{
			Kind:        SourceEntries,
			Key:         key,
			Match:       match.MatchFlattened,
			Description: fr.sourcePath + "[" + key + "*]",
		})
	}

	return sources
}
