// SPDX-License-Identifier: MPL-2.0

package permissions

import "slices"

const (
	// RuleUnset means no rule was given for the capability: access falls
	// back to default-deny, or to an interactive prompt when prompting is
	// enabled.
	RuleUnset RuleKind = iota
	// RuleAllow grants the capability, either unconditionally (no scopes)
	// or restricted to the listed scopes.
	RuleAllow
	// RuleDeny denies the capability, either unconditionally (no scopes)
	// or only for the listed scopes.
	RuleDeny
)

type (
	// RuleKind is the tagged state of a capability rule. Modeling allow and
	// deny as a single tagged value makes their mutual exclusion structural:
	// a capability holds exactly one rule.
	RuleKind int

	// Scope is a capability-specific restriction value: an absolute path
	// for read/write/ffi, a host[:port] pair for net, a variable name for
	// env, an API name for sys, a program name for run. Scopes are stored
	// normalized; see the per-capability parse functions.
	Scope string

	// Rule is the effective rule for one capability: a kind plus the scope
	// list it applies to. An empty scope list on an allow or deny rule
	// means the rule is unconditional. Scopes preserve first-insertion
	// order for stable re-serialization; duplicates are immaterial to
	// semantics.
	Rule struct {
		Kind   RuleKind
		Scopes []Scope
	}
)

// String returns the rule kind name.
func (k RuleKind) String() string {
	switch k {
	case RuleAllow:
		return "allow"
	case RuleDeny:
		return "deny"
	default:
		return "unset"
	}
}

// String returns the string representation of the Scope.
func (s Scope) String() string { return string(s) }

// Unconditional reports whether the rule applies to all possible scope
// values. An unset rule is never unconditional.
func (r Rule) Unconditional() bool {
	return r.Kind != RuleUnset && len(r.Scopes) == 0
}

// Contains reports whether the rule's scope list includes the given scope
// verbatim. Unconditional rules contain every scope.
func (r Rule) Contains(s Scope) bool {
	if r.Kind == RuleUnset {
		return false
	}
	if len(r.Scopes) == 0 {
		return true
	}
	return slices.Contains(r.Scopes, s)
}

// clone returns a deep copy so Set accessors never expose shared slices.
func (r Rule) clone() Rule {
	return Rule{Kind: r.Kind, Scopes: slices.Clone(r.Scopes)}
}

// equivalent reports whether two rules have the same kind and the same scope
// set, ignoring order and duplicates. This is the equivalence the serialize/
// re-parse round-trip contract is stated in terms of.
func (r Rule) equivalent(o Rule) bool {
	if r.Kind != o.Kind {
		return false
	}
	for _, s := range r.Scopes {
		if !o.Contains(s) {
			return false
		}
	}
	for _, s := range o.Scopes {
		if !r.Contains(s) {
			return false
		}
	}
	// Both empty or both covering the same set; unconditionality must agree.
	return r.Unconditional() == o.Unconditional()
}

// appendScope adds a scope if not already present, preserving insertion order.
func appendScope(scopes []Scope, s Scope) []Scope {
	if slices.Contains(scopes, s) {
		return scopes
	}
	return append(scopes, s)
}
