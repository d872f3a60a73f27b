package mapper

import (
	"reflect"

	"struct-mapper/internal/plan"
	"struct-mapper/node"
	"struct-mapper/options"
)

// PlanFor returns the plan mapping source onto target under rs, compiling it when
// needed.
func (m *Mapper) PlanFor(source, target reflect.Type, rs options.RuleSet) (*Plan, error) {
	return m.cache.GetOrCompile(m.engine.Key(source, target, rs))
}

// PlanOf is PlanFor with type parameters.
func PlanOf[S, T any](m *Mapper, rs options.RuleSet) (*Plan, error) {
	return m.PlanFor(reflect.TypeFor[S](), reflect.TypeFor[T](), rs)
}

// PlanString renders the plan of mapping source onto target as pseudo-code, with
// the plans of recursive members after the root.
func (m *Mapper) PlanString(source, target reflect.Type, rs options.RuleSet) (string, error) {
	p, err := m.PlanFor(source, target, rs)
	if err != nil {
		return "", err
	}

	return node.Render(p, m.cache), nil
}

// Dump renders a structured view of the plan mapping source onto target.
func (m *Mapper) Dump(source, target reflect.Type, rs options.RuleSet) (string, error) {
	p, err := m.PlanFor(source, target, rs)
	if err != nil {
		return "", err
	}

	return plan.Dump(p), nil
}

// Export returns the convention matches of the plan as a YAML mapping file, ready to
// be edited and loaded back with LoadConfig.
func (m *Mapper) Export(source, target reflect.Type, rs options.RuleSet) ([]byte, error) {
	p, err := m.PlanFor(source, target, rs)
	if err != nil {
		return nil, err
	}

	return plan.ExportYAML(p)
}

// Unmapped lists the target member paths the plan of source onto target leaves
// without a source.
func (m *Mapper) Unmapped(source, target reflect.Type, rs options.RuleSet) ([]string, error) {
	p, err := m.PlanFor(source, target, rs)
	if err != nil {
		return nil, err
	}

	return plan.ValidateCompleteness(p), nil
}
