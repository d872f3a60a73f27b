package plan

// ValidateCompleteness lists the target member paths p leaves unmapped.
func ValidateCompleteness(p *MappingPlan) []string {
	if p == nil || len(p.Unmapped) == 0 {
		return nil
	}

	paths := make([]string, len(p.Unmapped))
	for i, u := range p.Unmapped {
		paths[i] = u.Path
	}

	return paths
}

// Walk calls fn for every object plan reachable from p without crossing repeat
// references, outermost first.
func Walk(p *MappingPlan, fn func(*ObjectPlan)) {
	walkValue(p.Value, fn)
}

func walkValue(v *ValuePlan, fn func(*ObjectPlan)) {
	if v == nil {
		return
	}

	switch v.Strategy {
	case StrategyObject:
		fn(v.Object)

		if c := v.Object.Construction; c != nil {
			for _, arg := range c.Args {
				walkMember(arg, fn)
			}
		}

		for _, m := range v.Object.Members {
			walkMember(m, fn)
		}
	case StrategyEnumerable:
		walkValue(v.Enumerable.Element, fn)
	case StrategyDictionary:
		walkValue(v.Dictionary.Value, fn)
	case StrategyIndexed:
		walkValue(v.Indexed.Element, fn)
	}
}

func walkMember(m *MemberPlan, fn func(*ObjectPlan)) {
	for _, ds := range m.Sources {
		walkValue(ds.Value, fn)
	}
}
