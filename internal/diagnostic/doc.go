// Package diagnostic provides structured errors, warnings and infos about mapping
// configuration and compiled plans.
//
// Key uses:
//   - Configuration file checks (unknown types, bad member paths, unknown functions)
//   - Unmapped target members with the closest source names as suggestions
//   - Explanations of how each target member was resolved
package diagnostic
