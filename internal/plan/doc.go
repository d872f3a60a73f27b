// Package plan compiles mapping plans: the immutable description of how a value of
// one type is mapped onto a value of another under a rule set.
//
// Compilation pipeline:
//  1. Describe source and target through the type model.
//  2. For each target member, resolve data sources: configured entries first, from
//     the nearest enclosing object outwards, then the naming convention match.
//  3. Select a value strategy per source: assign, convert, cast, object, collection,
//     dictionary, flatten or dynamic.
//  4. Decide how nested objects compile: inline, through the shared plan of a
//     recursive type pair, or short-circuited to the zero value.
//  5. Record unmapped members; fail when strict validation is on.
//
// Plans are cached by Key: source type, target type, rule set and configuration
// fingerprint.
package plan
