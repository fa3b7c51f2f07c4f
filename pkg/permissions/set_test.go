// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"path/filepath"
	"testing"
)

func buildSet(t *testing.T, configure func(b *Builder) error) *Set {
	t.Helper()
	b := NewBuilder("")
	if err := configure(b); err != nil {
		t.Fatal(err)
	}
	return b.Build()
}

func TestSetAllowsPaths(t *testing.T) {
	t.Parallel()

	granted := filepath.Join(string(filepath.Separator), "srv", "data")
	set := buildSet(t, func(b *Builder) error {
		return b.Allow(CapRead, granted)
	})

	tests := []struct {
		target string
		want   bool
	}{
		{granted, true},
		{filepath.Join(granted, "db.sqlite"), true},
		{filepath.Join(granted, "a", "b", "c"), true},
		{filepath.Join(string(filepath.Separator), "srv"), false},
		{filepath.Join(string(filepath.Separator), "srv", "database"), false},
		{filepath.Join(string(filepath.Separator), "etc"), false},
	}
	for _, tt := range tests {
		if got := set.Allows(CapRead, tt.target); got != tt.want {
			t.Errorf("Allows(read, %q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestSetAllowsNet(t *testing.T) {
	t.Parallel()

	set := buildSet(t, func(b *Builder) error {
		return b.Allow(CapNet, "example.com,api.test:443,[::1]")
	})

	tests := []struct {
		target string
		want   bool
	}{
		{"example.com:80", true}, // host-only grant covers every port
		{"example.com:9999", true},
		{"example.com", true},
		{"api.test:443", true}, // host:port grant is exact
		{"api.test:80", false},
		{"[::1]:8080", true},
		{"other.test:80", false},
	}
	for _, tt := range tests {
		if got := set.Allows(CapNet, tt.target); got != tt.want {
			t.Errorf("Allows(net, %q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestSetAllowsUnconditional(t *testing.T) {
	t.Parallel()

	set := buildSet(t, func(b *Builder) error {
		return b.Allow(CapEnv, "")
	})

	if !set.Allows(CapEnv, "ANYTHING") {
		t.Error("Allows(env, ANYTHING) = false under unconditional allow")
	}
}

func TestSetDenyBlocks(t *testing.T) {
	t.Parallel()

	set := buildSet(t, func(b *Builder) error {
		return b.Deny(CapEnv, "SECRET")
	})

	// A deny rule means there is no allow rule, so nothing is granted,
	// whether listed or not.
	if set.Allows(CapEnv, "SECRET") {
		t.Error("Allows(env, SECRET) = true under deny")
	}
	if set.Allows(CapEnv, "HOME") {
		t.Error("Allows(env, HOME) = true with env under a deny rule")
	}
}

func TestSetUnsetDeniesWithoutGrant(t *testing.T) {
	t.Parallel()

	set := NewBuilder("").Build()
	if set.Allows(CapRun, "git") {
		t.Error("Allows(run, git) = true with no rules")
	}
	if set.AllowsHrtime() {
		t.Error("AllowsHrtime() = true with no rules")
	}
}

func TestSetEquivalent(t *testing.T) {
	t.Parallel()

	a := buildSet(t, func(b *Builder) error {
		return b.Allow(CapEnv, "HOME,PATH")
	})
	sameReordered := buildSet(t, func(b *Builder) error {
		return b.Allow(CapEnv, "PATH,HOME,PATH")
	})
	different := buildSet(t, func(b *Builder) error {
		return b.Allow(CapEnv, "HOME")
	})
	denied := buildSet(t, func(b *Builder) error {
		return b.Deny(CapEnv, "HOME,PATH")
	})

	if !a.Equivalent(sameReordered) {
		t.Error("Equivalent() = false for reordered duplicate scopes")
	}
	if a.Equivalent(different) {
		t.Error("Equivalent() = true for distinct scope sets")
	}
	if a.Equivalent(denied) {
		t.Error("Equivalent() = true across allow and deny kinds")
	}

	noPrompt := NewBuilder("")
	noPrompt.NoPrompt()
	if NewBuilder("").Build().Equivalent(noPrompt.Build()) {
		t.Error("Equivalent() = true across prompt policies")
	}
}

func TestSetRuleReturnsCopy(t *testing.T) {
	t.Parallel()

	set := buildSet(t, func(b *Builder) error {
		return b.Allow(CapEnv, "HOME")
	})

	r := set.Rule(CapEnv)
	r.Scopes[0] = "MUTATED"
	if got := set.Rule(CapEnv).Scopes[0]; got != "HOME" {
		t.Errorf("Rule(env).Scopes[0] = %q after caller mutation, want HOME", got)
	}
}
