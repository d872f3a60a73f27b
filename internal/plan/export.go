package plan

import (
	"slices"
	"strings"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/mapping"
)

// Export builds a mapping file pinning the convention matches of a compiled plan.
// Configured sources are already in the store and are left out, so loading the
// export next to the original configuration only adds the auto matches.
func Export(p *MappingPlan) *mapping.MappingFile {
	tm := mapping.TypeMapping{
		Source:   analyze.IDOf(p.Key.Source).Short(),
		Target:   analyze.IDOf(p.Key.Target).Short(),
		RuleSets: mapping.StringArray{p.Key.RuleSet.String()},
	}

	seen := make(map[string]bool)

	Walk(p, func(op *ObjectPlan) {
		for _, m := range op.Members {
			fm, ok := exportField(p.Root, m)
			if ok && !seen[fm.Target] {
				seen[fm.Target] = true
				tm.Auto = append(tm.Auto, fm)
			}
		}
	})

	slices.SortFunc(tm.Auto, func(a, b mapping.FieldMapping) int {
		return strings.Compare(a.Target, b.Target)
	})

	return &mapping.MappingFile{
		Version:      "1",
		TypeMappings: []mapping.TypeMapping{tm},
	}
}

// ExportYAML renders Export as canonical YAML.
func ExportYAML(p *MappingPlan) ([]byte, error) {
	return mapping.Marshal(Export(p))
}

// exportField pins the winning convention source of m. Entries, flattened prefixes
// and members below dictionary entries have no path form and are skipped.
func exportField(root *QualifiedMember, m *MemberPlan) (mapping.FieldMapping, bool) {
	if len(m.Sources) != 1 {
		return mapping.FieldMapping{}, false
	}

	ds := m.Sources[0]
	if ds.Configured || ds.Kind != SourceMember || len(ds.Path) == 0 || ds.FrameUp != 0 {
		return mapping.FieldMapping{}, false
	}

	target := m.Target.RelativePath(root)
	if target == "" || strings.HasSuffix(ds.Description, "*") {
		return mapping.FieldMapping{}, false
	}

	return mapping.FieldMapping{Target: target, Source: ds.Description}, true
}
