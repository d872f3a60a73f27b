// Package match proposes convention sources for target members.
//
// A target member is matched against the readable members of a source type in tiers:
// exact name, case-insensitive name (separators ignored), flattened path
// (CustomerEmail from Customer.Email) and, for constructor parameters without names,
// position and type. Only type-compatible candidates are accepted; members left
// unmatched get Levenshtein-ranked suggestions.
package match
