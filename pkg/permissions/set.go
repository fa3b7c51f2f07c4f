// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"path/filepath"
	"strings"

	"sandrun-cli/pkg/platform"
)

// Set is the complete, immutable record of granted and denied capabilities
// for one process invocation. It is built once during command-line parsing
// and freely shareable across goroutines afterwards; no accessor mutates it
// or exposes internal slices.
type Set struct {
	allowAll bool
	noPrompt bool
	rules    map[Capability]Rule
}

// AllowAll reports whether every capability was granted via the global
// allow-all escape hatch.
func (s *Set) AllowAll() bool { return s.allowAll }

// NoPrompt reports whether interactive elevation is disabled. When true, an
// operation lacking an explicit allow rule fails outright rather than
// prompting the controlling terminal.
func (s *Set) NoPrompt() bool { return s.noPrompt }

// Rule returns the effective rule for a capability. Unknown capabilities
// report an unset rule.
func (s *Set) Rule(cap Capability) Rule {
	return s.rules[cap].clone()
}

// Allows reports whether an operation on the given scope value is covered by
// an explicit grant. It answers the allow/deny question only: a false result
// means "no explicit grant", which the enforcement point turns into either a
// prompt or a denial depending on NoPrompt.
//
// Scope matching is capability-specific: path capabilities match a target
// that equals a granted path or sits beneath it; net scopes without a port
// match every port of that host; env comparison folds case on hosts with
// case-insensitive environments; run and sys scopes match verbatim.
func (s *Set) Allows(cap Capability, target string) bool {
	if s.allowAll {
		return true
	}
	r := s.rules[cap]
	switch r.Kind {
	case RuleDeny:
		// A scoped deny blocks only the listed scopes, but anything outside
		// them still has no allow rule.
		return false
	case RuleAllow:
		if len(r.Scopes) == 0 {
			return true
		}
		for _, scope := range r.Scopes {
			if scopeMatches(cap, scope, target) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// AllowsHrtime reports whether high-resolution timers are granted.
func (s *Set) AllowsHrtime() bool {
	return s.allowAll || s.rules[CapHrtime].Kind == RuleAllow
}

// Equivalent reports whether two sets grant and deny exactly the same
// things: same allow-all and prompt policy, and per capability the same
// rule kind over the same scope set, ignoring scope order and duplicates.
// This is the equivalence the serialize/re-parse round trip preserves.
func (s *Set) Equivalent(o *Set) bool {
	if s.allowAll != o.allowAll || s.noPrompt != o.noPrompt {
		return false
	}
	for _, cap := range Capabilities() {
		if !s.rules[cap].equivalent(o.rules[cap]) {
			return false
		}
	}
	return true
}

// scopeMatches reports whether one granted scope covers a target value.
func scopeMatches(cap Capability, scope Scope, target string) bool {
	switch cap {
	case CapRead, CapWrite, CapFFI:
		return pathCovers(string(scope), target)
	case CapNet:
		return netCovers(string(scope), target)
	case CapEnv:
		if platform.EnvIsCaseInsensitive() {
			return strings.EqualFold(string(scope), target)
		}
		return string(scope) == target
	default:
		return string(scope) == target
	}
}

// pathCovers reports whether target equals the granted path or is nested
// beneath it.
func pathCovers(granted, target string) bool {
	granted = filepath.Clean(granted)
	target = filepath.Clean(target)
	if granted == target {
		return true
	}
	rel, err := filepath.Rel(granted, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// netCovers reports whether a granted net scope covers a target host:port.
// A host-only grant covers every port of that host; a host:port grant covers
// exactly that pair.
func netCovers(granted, target string) bool {
	if granted == target {
		return true
	}
	if strings.Contains(granted, ":") && !strings.HasPrefix(granted, "[") {
		return false
	}
	host := target
	if idx := strings.LastIndex(target, ":"); idx >= 0 && !strings.HasPrefix(target, "[") {
		host = target[:idx]
	} else if strings.HasPrefix(target, "[") {
		if end := strings.Index(target, "]"); end >= 0 {
			host = target[:end+1]
		}
	}
	return granted == host
}
