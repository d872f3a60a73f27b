package plan

import (
	"github.com/davecgh/go-spew/spew"

	"struct-mapper/internal/analyze"
)

// dumpConfig prints plans deterministically: no pointer addresses or capacities.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

type dumpMember struct {
	Target   string
	Ignored  bool
	InPlace  bool
	Sources  []dumpSource
	Unmapped string
}

type dumpSource struct {
	From  string
	Kind  string
	Value *dumpValue
}

type dumpValue struct {
	Strategy     string
	Source       string
	Target       string
	Construction string
	Members      []dumpMember
	Element      *dumpValue
	Repeat       string
}

// Dump renders a structured view of p: every member, its sources and value strategy.
func Dump(p *MappingPlan) string {
	root := struct {
		Key      string
		Value    *dumpValue
		Unmapped []Unmapped
	}{
		Key:      p.Key.String(),
		Value:    dumpOf(p.Value),
		Unmapped: p.Unmapped,
	}

	return dumpConfig.Sdump(root)
}

func dumpOf(v *ValuePlan) *dumpValue {
	if v == nil {
		return nil
	}

	d := &dumpValue{
		Strategy: v.Strategy.String(),
		Source:   analyze.TypeString(v.SourceType),
		Target:   analyze.TypeString(v.TargetType),
	}

	switch v.Strategy {
	case StrategyObject:
		if c := v.Object.Construction; c != nil {
			d.Construction = c.Kind.String()
			d.Members = append(d.Members, dumpMembers(c.Args)...)
		}

		d.Members = append(d.Members, dumpMembers(v.Object.Members)...)
	case StrategyRepeat:
		d.Repeat = v.Repeat.Key.String()
	case StrategyEnumerable:
		d.Element = dumpOf(v.Enumerable.Element)
	case StrategyDictionary:
		d.Element = dumpOf(v.Dictionary.Value)
	case StrategyIndexed:
		d.Element = dumpOf(v.Indexed.Element)
	}

	return d
}

func dumpMembers(members []*MemberPlan) []dumpMember {
	out := make([]dumpMember, 0, len(members))

	for _, m := range members {
		dm := dumpMember{Target: m.Target.Path, Ignored: m.Ignored, InPlace: m.InPlace}

		if m.miss != nil {
			dm.Unmapped = m.miss.Reason
		}

		for _, ds := range m.Sources {
			dm.Sources = append(dm.Sources, dumpSource{
				From:  ds.Description,
				Kind:  ds.Kind.String(),
				Value: dumpOf(ds.Value),
			})
		}

		out = append(out, dm)
	}

	return out
}
