// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"errors"
	"fmt"

	"sandrun-cli/pkg/types"
)

// ErrConflictingAllowDeny is the sentinel error wrapped by ConflictingAllowDenyError.
var ErrConflictingAllowDeny = errors.New("conflicting allow and deny rules")

type (
	// ConflictingAllowDenyError is returned when both an allow and a deny
	// rule are given for the same capability, in any order and with any
	// scoping. The two are mutually exclusive per capability.
	ConflictingAllowDenyError struct {
		Capability Capability
	}

	// Builder accumulates permission flag occurrences in encounter order
	// and merges them into one immutable Set. It is the only way to
	// construct a Set.
	//
	// Merge semantics per capability: a later occurrence of the same flag
	// replaces an earlier one (last-wins), except that an unconditional
	// occurrence is sticky: once a capability is granted or denied without
	// scopes, later scoped occurrences never narrow it back.
	Builder struct {
		baseDir  types.FilesystemPath
		rules    map[Capability]Rule
		explicit map[Capability]RuleKind // first explicit kind seen, for conflict detection
		allowAll bool
		noPrompt bool
	}
)

// Error implements the error interface.
func (e *ConflictingAllowDenyError) Error() string {
	return fmt.Sprintf("cannot both allow and deny the %s capability", e.Capability)
}

// Unwrap returns ErrConflictingAllowDeny for errors.Is() compatibility.
func (e *ConflictingAllowDenyError) Unwrap() error { return ErrConflictingAllowDeny }

// NewBuilder creates a Builder. baseDir is the working directory at process
// start, used to absolutize relative path scopes; it may be empty, in which
// case relative path scopes fail with a PathResolutionError.
func NewBuilder(baseDir types.FilesystemPath) *Builder {
	return &Builder{
		baseDir:  baseDir,
		rules:    make(map[Capability]Rule),
		explicit: make(map[Capability]RuleKind),
	}
}

// AllowAll records the unconditional grant of every capability. Individual
// capability rules are expanded eagerly at Build time; the flag itself stays
// the single source of truth for serialization.
func (b *Builder) AllowAll() {
	b.allowAll = true
}

// NoPrompt disables interactive elevation: operations without an explicit
// allow rule fail outright instead of prompting.
func (b *Builder) NoPrompt() {
	b.noPrompt = true
}

// Allow records one allow flag occurrence for cap. An empty raw value is an
// unconditional grant; otherwise raw is a comma-delimited scope list.
func (b *Builder) Allow(cap Capability, raw string) error {
	return b.apply(cap, RuleAllow, raw)
}

// Deny records one deny flag occurrence for cap. An empty raw value is an
// unconditional denial; otherwise raw is a comma-delimited scope list.
func (b *Builder) Deny(cap Capability, raw string) error {
	return b.apply(cap, RuleDeny, raw)
}

// apply parses and merges one flag occurrence. Conflicting kinds for the
// same capability are rejected here, before any merge happens, so the merge
// step itself never fails.
func (b *Builder) apply(cap Capability, kind RuleKind, raw string) error {
	if ok, errs := cap.IsValid(); !ok {
		return errs[0]
	}
	if prev, seen := b.explicit[cap]; seen && prev != kind {
		return &ConflictingAllowDenyError{Capability: cap}
	}

	var scopes []Scope
	if cap.Scoped() {
		var err error
		scopes, err = parseScopes(cap, raw, b.baseDir)
		if err != nil {
			return err
		}
	} else if raw != "" {
		return &MalformedTokenError{Value: raw, Capability: cap}
	}

	b.explicit[cap] = kind
	b.merge(cap, kind, scopes)
	return nil
}

// merge folds one pre-validated occurrence into the capability's rule.
func (b *Builder) merge(cap Capability, kind RuleKind, scopes []Scope) {
	cur, ok := b.rules[cap]
	if ok && cur.Unconditional() {
		// Widened to unconditional earlier; scoped occurrences never
		// narrow back.
		return
	}
	b.rules[cap] = Rule{Kind: kind, Scopes: scopes}
}

// GrantListen unions the implicit net scopes of a server listening on
// host:port into the net rule. Implicit grants never replace an explicit
// rule: an unconditional allow absorbs them, scoped allows are widened by
// union, and an explicit deny is left untouched (the implicit grant does not
// override a user's denial).
func (b *Builder) GrantListen(host string, port types.ListenPort) {
	cur := b.rules[CapNet]
	if cur.Kind == RuleDeny {
		return
	}
	if cur.Kind == RuleAllow && cur.Unconditional() {
		return
	}
	scopes := cur.Scopes
	for _, s := range ListenScopes(host, port) {
		scopes = appendScope(scopes, s)
	}
	b.rules[CapNet] = Rule{Kind: RuleAllow, Scopes: scopes}
}

// GrantRead unions an implicit read scope into the read rule, with the same
// contract as GrantListen: denies and unconditional allows are left alone,
// scoped allows are widened by union. Paths that fail to resolve are
// silently skipped; implicit grants never fail an invocation.
func (b *Builder) GrantRead(path string) {
	scopes, err := parseScopeToken(CapRead, path, b.baseDir)
	if err != nil || len(scopes) == 0 {
		return
	}
	cur := b.rules[CapRead]
	if cur.Kind == RuleDeny {
		return
	}
	if cur.Kind == RuleAllow && cur.Unconditional() {
		return
	}
	merged := cur.Scopes
	for _, s := range scopes {
		merged = appendScope(merged, s)
	}
	b.rules[CapRead] = Rule{Kind: RuleAllow, Scopes: merged}
}

// Build assembles the immutable Set. Input was validated as it was applied,
// so Build itself is total. When allow-all was recorded, every capability
// rule is eagerly expanded to an unconditional allow.
func (b *Builder) Build() *Set {
	rules := make(map[Capability]Rule, len(Capabilities()))
	for _, cap := range Capabilities() {
		if b.allowAll {
			rules[cap] = Rule{Kind: RuleAllow}
			continue
		}
		if r, ok := b.rules[cap]; ok {
			rules[cap] = r.clone()
		} else {
			rules[cap] = Rule{Kind: RuleUnset}
		}
	}
	return &Set{
		allowAll: b.allowAll,
		noPrompt: b.noPrompt,
		rules:    rules,
	}
}
