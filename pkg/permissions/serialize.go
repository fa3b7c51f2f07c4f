// SPDX-License-Identifier: MPL-2.0

package permissions

import "strings"

// Serialize reconstructs the minimal command-line token list that re-parses
// to an equivalent Set. It is used to propagate the permission grant to
// child processes, so it must never silently drop a rule: every capability
// with a rule emits exactly one token, in the fixed canonical capability
// order, with scopes comma-joined in their original insertion order.
//
// The allow-all escape hatch short-circuits all capability tokens. The
// prompt policy is not a capability rule and is appended separately.
func (s *Set) Serialize() []string {
	var tokens []string
	if s.allowAll {
		tokens = append(tokens, "--allow-all")
	} else {
		for _, cap := range Capabilities() {
			if tok, ok := serializeRule(cap, s.rules[cap]); ok {
				tokens = append(tokens, tok)
			}
		}
	}
	if s.noPrompt {
		tokens = append(tokens, "--no-prompt")
	}
	return tokens
}

// serializeRule renders one capability rule as a flag token. Unset rules
// emit nothing.
func serializeRule(cap Capability, r Rule) (string, bool) {
	if r.Kind == RuleUnset {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString("--")
	sb.WriteString(r.Kind.String())
	sb.WriteString("-")
	sb.WriteString(string(cap))
	if len(r.Scopes) > 0 {
		sb.WriteString("=")
		for i, scope := range r.Scopes {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(string(scope))
		}
	}
	return sb.String(), true
}
