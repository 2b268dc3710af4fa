// Package capability classifies SwitchBot device types into capability
// profiles.
//
// A profile lists the commands a device accepts, the parameter shape of each
// command, and the status fields worth showing. Profiles live in a static,
// ordered table; Resolve picks the entry whose matcher token is the longest
// substring of the normalized device type, so "Plug Mini (JP)" resolves to
// plugMini rather than plug. Ties go to the entry registered first.
//
// Family predicates (Classify) are a second, deliberately separate layer:
// plain substring tests that drive finer switches such as deadbolt support.
// Where a family corresponds to profile keys, the predicate also consults the
// resolved profile so the two layers cannot disagree; see family.go.
//
// Everything in this package is pure and safe for concurrent use.
package capability
