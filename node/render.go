package node

import (
	"fmt"
	"strings"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/plan"
)

// Render writes p as pseudo-code: one assignment per target member, nested objects
// and loops inline. The plans of repeat references are rendered once each after the
// root, resolved through plans; a nil plans leaves them as references.
func Render(p *plan.MappingPlan, plans Plans) string {
	r := &renderer{
		vars:  NewStem("target"),
		items: NewStem("item"),
	}

	r.queue.Done(p.Key)
	r.plan(p)

	for key, ok := r.queue.Next(); ok; key, ok = r.queue.Next() {
		r.lines = append(r.lines, "")

		if plans == nil {
			r.lines = append(r.lines, "# "+key.String()+": not resolved")
			continue
		}

		rp, err := plans.GetOrCompile(key)
		if err != nil {
			r.lines = append(r.lines, "# "+key.String()+": "+err.Error())
			continue
		}

		r.plan(rp)
	}

	return strings.Join(r.lines, "\n") + "\n"
}

type renderer struct {
	lines []string
	vars  *Stem
	items *Stem
	queue Dealer
}

func (r *renderer) plan(p *plan.MappingPlan) {
	r.lines = append(r.lines, "# "+p.Key.String())
	r.lines = append(r.lines, r.value(p.Value, "source", "result")...)

	for _, u := range p.Unmapped {
		line := "# unmapped " + u.Path
		if u.Reason != "" {
			line += ": " + u.Reason
		}

		r.lines = append(r.lines, line)
	}
}

func (r *renderer) value(vp *plan.ValuePlan, src, dst string) []string {
	t := analyze.TypeString(vp.TargetType)

	switch vp.Strategy {
	case plan.StrategyAssign:
		return []string{dst + " = " + src}
	case plan.StrategyConvert:
		return []string{fmt.Sprintf("%s = convert[%s](%s)", dst, t, src)}
	case plan.StrategyCast:
		return []string{fmt.Sprintf("%s = cast[%s](%s)", dst, t, src)}
	case plan.StrategyShortCircuit:
		return []string{fmt.Sprintf("%s = zero[%s] // recursion stops", dst, t)}
	case plan.StrategyDynamic:
		return []string{fmt.Sprintf("%s = dynamic[%s](%s)", dst, t, src)}
	case plan.StrategyRepeat:
		r.queue.Needs(vp.Repeat.Key)

		line := fmt.Sprintf("%s = repeat[%s](%s)", dst, vp.Repeat.Key, src)
		if vp.Repeat.MaxDepth > 0 {
			line += fmt.Sprintf(" // depth <= %d", vp.Repeat.MaxDepth)
		}

		return []string{line}
	case plan.StrategyObject:
		return r.object(vp.Object, dst)
	case plan.StrategyEnumerable:
		return r.loop(vp.Enumerable.Element, "range "+src, dst)
	case plan.StrategyIndexed:
		return r.loop(vp.Indexed.Element, fmt.Sprintf("range entries(%s, %q)", src, "[i]"), dst)
	case plan.StrategyDictionary:
		return r.dictionary(vp.Dictionary, src, dst)
	case plan.StrategyFlatten:
		lines := []string{dst + " = make(" + t + ")"}
		return append(lines, r.flatten(vp.Flatten, src, dst, "")...)
	default:
		return []string{"// " + dst + ": " + vp.Strategy.String()}
	}
}

func (r *renderer) object(op *plan.ObjectPlan, dst string) []string {
	obj := r.vars.Next()
	t := analyze.TypeString(op.TargetType)

	var lines []string

	switch op.Construction.Kind {
	case plan.ConstructZero:
		lines = append(lines, fmt.Sprintf("%s := new(%s)", obj, t))
	case plan.ConstructFactory:
		lines = append(lines, fmt.Sprintf("%s := factory[%s](ctx)", obj, t))
	case plan.ConstructConstructor:
		args := make([]string, len(op.Construction.Args))
		for i, arg := range op.Construction.Args {
			args[i] = sourceExpr(arg.Sources[0])
		}

		lines = append(lines, fmt.Sprintf("%s := construct[%s](%s)", obj, t, strings.Join(args, ", ")))
	default:
		lines = append(lines, fmt.Sprintf("%s := existing[%s]", obj, t))
	}

	for range op.Before {
		lines = append(lines, "before(ctx, "+obj+")")
	}

	for _, mp := range op.Members {
		lines = append(lines, r.member(mp, obj)...)
	}

	for range op.After {
		lines = append(lines, "after(ctx, "+obj+")")
	}

	return append(lines, dst+" = "+obj)
}

func (r *renderer) member(mp *plan.MemberPlan, obj string) []string {
	dst := obj + "." + mp.Target.Name()

	switch {
	case mp.Ignored:
		return []string{"// " + dst + " ignored"}
	case mp.Consumed:
		return []string{"// " + dst + " set by constructor"}
	case len(mp.Sources) == 0:
		return []string{"// " + dst + " unmapped"}
	}

	var lines []string

	if len(mp.Sources) == 1 && mp.Sources[0].Condition == nil {
		lines = r.value(mp.Sources[0].Value, sourceExpr(mp.Sources[0]), dst)
	} else {
		for i, ds := range mp.Sources {
			switch {
			case ds.Condition == nil && i == 0:
				lines = append(lines, "{")
			case ds.Condition == nil:
				lines = append(lines, "} else {")
			case i == 0:
				lines = append(lines, fmt.Sprintf("if %s(ctx) {", conditionName(ds)))
			default:
				lines = append(lines, fmt.Sprintf("} else if %s(ctx) {", conditionName(ds)))
			}

			lines = append(lines, indentAll(r.value(ds.Value, sourceExpr(ds), dst), 1)...)
		}

		lines = append(lines, "}")
	}

	if len(mp.IgnoreIf) == 0 {
		return lines
	}

	lines = append([]string{"if !ignored(ctx) {"}, indentAll(lines, 1)...)

	return append(lines, "}")
}

func conditionName(ds *plan.DataSource) string {
	if ds.Name != "" {
		return ds.Name
	}

	return "condition"
}

func (r *renderer) loop(elem *plan.ValuePlan, over, dst string) []string {
	item := r.items.Next()
	out := r.vars.Next()

	lines := []string{fmt.Sprintf("for %s := %s {", item, over)}
	lines = append(lines, indentAll(r.value(elem, item, out), 1)...)
	lines = append(lines, fmt.Sprintf("\t%s = append(%s, %s)", dst, dst, out))

	return append(lines, "}")
}

func (r *renderer) dictionary(dp *plan.DictionaryPlan, src, dst string) []string {
	key, value := r.items.Next(), r.items.Next()
	k, v := r.vars.Next(), r.vars.Next()

	lines := []string{fmt.Sprintf("for %s, %s := range %s {", key, value, src)}
	lines = append(lines, indentAll(r.value(dp.Key, key, k), 1)...)
	lines = append(lines, indentAll(r.value(dp.Value, value, v), 1)...)
	lines = append(lines, fmt.Sprintf("\t%s[%s] = %s", dst, k, v))

	return append(lines, "}")
}

func (r *renderer) flatten(fp *plan.FlattenPlan, src, dst, prefix string) []string {
	var lines []string

	if fp.Element != nil {
		item := r.items.Next()

		lines = append(lines, fmt.Sprintf("for i, %s := range %s {", item, src))
		lines = append(lines, indentAll(r.flattenField(fp, fp.Element, item, dst, prefix+"[i]"), 1)...)

		return append(lines, "}")
	}

	for _, f := range fp.Fields {
		lines = append(lines, r.flattenField(fp, f, src+"."+f.Key, dst, prefix+f.Key)...)
	}

	return lines
}

func (r *renderer) flattenField(fp *plan.FlattenPlan, f *plan.FlattenField, src, dst, key string) []string {
	switch {
	case f.Nested != nil && f.Nested.Element != nil:
		return r.flatten(f.Nested, src, dst, key)
	case f.Nested != nil:
		return r.flatten(f.Nested, src, dst, key+fp.Separator)
	default:
		return r.value(f.Leaf, src, fmt.Sprintf("%s[%q]", dst, key))
	}
}

func sourceExpr(ds *plan.DataSource) string {
	switch ds.Kind {
	case plan.SourceMember:
		if ds.Description == "" {
			return "source"
		}

		return "source." + ds.Description
	case plan.SourceEntry, plan.SourceEntries:
		return "source" + ds.Description
	case plan.SourceFunc:
		if ds.Name != "" {
			return ds.Name + "(ctx)"
		}

		return "value(ctx)"
	default:
		return ds.Description
	}
}
