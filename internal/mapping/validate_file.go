package mapping

import (
	"fmt"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/diagnostic"
	"struct-mapper/internal/match"
	"struct-mapper/options"
	"struct-mapper/primitive"
)

// ValidateFile checks a mapping file without applying it. With a nil model only the
// structure is checked; with a model, type names and member paths are resolved too.
// With a nil funcs registry, function names are not checked.
func ValidateFile(mf *MappingFile, model analyze.TypeModel, funcs *TransformRegistry) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if mf == nil {
		res.AddError("mapping_is_nil", "mapping file is nil", "", "")
		return res
	}

	if mf.Version != "" && mf.Version != "1" {
		res.AddWarning("unknown_version", fmt.Sprintf("unknown schema version %q", mf.Version), "", "")
	}

	if mf.Settings != nil {
		validateSettings(res, *mf.Settings)
	}

	for _, rule := range mf.Types {
		if rule.MaxDepth < 0 {
			res.AddError("negative_max_depth", "max_depth must not be negative", "", rule.Type)
		}

		info := resolveInfo(res, model, rule.Type, "")
		if info != nil && rule.Identity != "" && info.Member(rule.Identity) == nil {
			res.AddError("unknown_identity", fmt.Sprintf("identity member %q not found", rule.Identity), "", rule.Type)
		}
	}

	names := map[string]bool{}

	for i := range mf.TypeMappings {
		validateTypeMapping(res, &mf.TypeMappings[i], model, funcs, names)
	}

	for i := range mf.TypeMappings {
		tm := &mf.TypeMappings[i]
		for _, fm := range append(append([]FieldMapping{}, tm.Fields...), tm.Auto...) {
			for _, after := range fm.After {
				if !names[after] {
					res.AddError("unknown_after", fmt.Sprintf("after names unknown data source %q", after), pairString(tm), fm.Target)
				}
			}
		}
	}

	return res
}

func validateSettings(res *diagnostic.Diagnostics, s options.Settings) {
	if s.MaxRecursionDepth < 0 {
		res.AddError("negative_max_depth", "max_recursion_depth must not be negative", "", "settings")
	}

	if s.MaxDictionaryIndex < 0 {
		res.AddError("negative_max_index", "max_dictionary_index must not be negative", "", "settings")
	}

	if _, err := primitive.ParseCategories(s.Conversions); len(s.Conversions) > 0 && err != nil {
		res.AddError("invalid_conversions", err.Error(), "", "settings")
	}

	if s.Culture != "" {
		if _, err := primitive.ParseCulture(s.Culture); err != nil {
			res.AddError("invalid_culture", err.Error(), "", "settings")
		}
	}
}

func validateTypeMapping(
	res *diagnostic.Diagnostics,
	tm *TypeMapping,
	model analyze.TypeModel,
	funcs *TransformRegistry,
	names map[string]bool,
) {
	tp := pairString(tm)

	if tm.Target == "" {
		res.AddError("missing_target_type", "mapping must name a target type", tp, "")
		return
	}

	var srcT *analyze.TypeInfo
	if tm.Source != "" {
		srcT = resolveInfo(res, model, tm.Source, tp)
	}

	dstT := resolveInfo(res, model, tm.Target, tp)

	for _, name := range tm.RuleSets {
		if _, err := options.ParseRuleSet(name); err != nil {
			res.AddError("unknown_rule_set", err.Error(), tp, "")
		}
	}

	for _, entry := range tm.sortedOneToOne() {
		validateMemberPath(res, model, srcT, entry[0], tp, "invalid_source_path")
		validateMemberPath(res, model, dstT, entry[1], tp, "invalid_target_path")
	}

	for _, fm := range append(append([]FieldMapping{}, tm.Fields...), tm.Auto...) {
		validateFieldMapping(res, model, funcs, srcT, dstT, tp, &fm)

		if fm.Name == "" {
			continue
		}

		if names[fm.Name] {
			res.AddError("duplicate_name", fmt.Sprintf("duplicate data source name %q", fm.Name), tp, fm.Target)
		}

		names[fm.Name] = true
	}

	for _, ig := range tm.Ignore {
		validateMemberPath(res, model, dstT, ig, tp, "invalid_ignore_path")
	}

	for _, ig := range tm.IgnoreIf {
		checkFunc(res, funcs, tp, "", "condition", ig.Condition)

		for _, path := range ig.Targets {
			validateMemberPath(res, model, dstT, path, tp, "invalid_ignore_path")
		}
	}

	checkFunc(res, funcs, tp, "", "factory", tm.Factory)

	for _, name := range append(append([]string{}, tm.Before...), tm.After...) {
		checkFunc(res, funcs, tp, "", "callback", name)
	}

	for _, d := range tm.Derived {
		resolveInfo(res, model, d.Source, tp)
		resolveInfo(res, model, d.Concrete, tp)
	}

	if tm.KeySeparator == options.DefaultSeparator {
		res.AddWarning("redundant_separator", "key_separator repeats the default", tp, "")
	}
}

func validateFieldMapping(
	res *diagnostic.Diagnostics,
	model analyze.TypeModel,
	funcs *TransformRegistry,
	srcT, dstT *analyze.TypeInfo,
	tp string,
	fm *FieldMapping,
) {
	if fm.Target == "" {
		res.AddError("missing_target_path", "field mapping must specify target", tp, "")
		return
	}

	validateMemberPath(res, model, dstT, fm.Target, tp, "invalid_target_path")

	values := 0

	if fm.Source != "" {
		values++

		validateMemberPath(res, model, srcT, fm.Source, tp, "invalid_source_path")
	}

	if fm.Transform != "" {
		values++

		checkFunc(res, funcs, tp, fm.Target, "transform", fm.Transform)
	}

	if fm.Constant != nil {
		values++
	}

	switch {
	case values == 0:
		res.AddError("missing_source", "field mapping must specify source, transform or constant", tp, fm.Target)
	case values > 1:
		res.AddError("ambiguous_source", "field mapping must specify only one of source, transform and constant", tp, fm.Target)
	}

	checkFunc(res, funcs, tp, fm.Target, "condition", fm.Condition)
}

func checkFunc(res *diagnostic.Diagnostics, funcs *TransformRegistry, tp, path, kind, name string) {
	if funcs == nil || name == "" {
		return
	}

	var err error

	switch kind {
	case "transform":
		_, err = funcs.Value(name)
	case "condition":
		_, err = funcs.Condition(name)
	case "factory":
		_, err = funcs.Factory(name)
	default:
		_, err = funcs.Callback(name)
	}

	if err != nil {
		res.AddError("unknown_"+kind, err.Error(), tp, path)
	}
}

func resolveInfo(res *diagnostic.Diagnostics, model analyze.TypeModel, name, tp string) *analyze.TypeInfo {
	if model == nil {
		return nil
	}

	t, ok := model.Lookup(name)
	if !ok {
		res.AddError("type_not_found", fmt.Sprintf("type %q not found", name), tp, name)
		return nil
	}

	return model.TypeOf(t)
}

// validateMemberPath parses path and, when info is known, walks it through the model.
// Dictionaries and interfaces end the walk: their keys and members are only known at runtime.
func validateMemberPath(res *diagnostic.Diagnostics, model analyze.TypeModel, info *analyze.TypeInfo, path, tp, code string) {
	fp, err := ParsePath(path)
	if err != nil {
		res.AddError(code, err.Error(), tp, path)
		return
	}

	for _, seg := range fp.Segments {
		if info == nil || info.Kind == analyze.TypeKindDictionary || info.Kind == analyze.TypeKindInterface {
			return
		}

		if info.Kind != analyze.TypeKindComplex {
			res.AddError(code, fmt.Sprintf("cannot access member %q on %s", seg.Name, info.Kind), tp, path)
			return
		}

		member := info.Member(seg.Name)
		if member == nil {
			res.AddError(code, fmt.Sprintf("member %q not found in %s", seg.Name, info.ID.Short()), tp, path,
				suggest(info, seg.Name)...)

			return
		}

		next := model.TypeOf(member.Type)

		if seg.IsSlice {
			if next == nil || next.Kind != analyze.TypeKindEnumerable {
				res.AddError(code, fmt.Sprintf("segment %q uses [] but %s is not a collection", seg.Name, analyze.TypeString(member.Type)), tp, path)
				return
			}

			next = model.TypeOf(next.Enumerable.Elem)
		}

		info = next
	}
}

func suggest(info *analyze.TypeInfo, name string) []string {
	var out []string

	for _, member := range info.Members {
		if match.NameSimilarity(member.Name, name) >= match.DefaultSuggestionScore {
			out = append(out, member.Name)
		}
	}

	return out
}

func pairString(tm *TypeMapping) string {
	source := tm.Source
	if source == "" {
		source = "*"
	}

	return source + "->" + tm.Target
}
