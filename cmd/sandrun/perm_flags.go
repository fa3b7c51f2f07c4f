// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"sandrun-cli/pkg/permissions"
	"sandrun-cli/pkg/types"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// optionalValueSentinel is the NoOptDefVal used to distinguish a bare flag
// occurrence (--allow-read) from one with an explicit empty value
// (--allow-read=""). It can never appear in real user input.
const optionalValueSentinel = "\x00"

type (
	// permOccurrence is one --allow-* or --deny-* flag occurrence, recorded
	// in command-line order. The order matters: the descriptor merge is
	// last-wins per capability.
	permOccurrence struct {
		cap  permissions.Capability
		kind permissions.RuleKind
		raw  string
	}

	// permissionFlags collects the permission flag set shared by run, serve
	// and permissions inspect.
	permissionFlags struct {
		occurrences []permOccurrence
		allowAll    bool
		noPrompt    bool
		allowHrtime bool
		denyHrtime  bool
	}

	// scopeFlagValue is a pflag.Value that appends an occurrence each time
	// its flag appears, preserving encounter order across all flags.
	scopeFlagValue struct {
		flags *permissionFlags
		cap   permissions.Capability
		kind  permissions.RuleKind
	}
)

// Set records one occurrence. A sentinel value means the flag appeared bare,
// which widens the capability to an unconditional rule.
func (v *scopeFlagValue) Set(raw string) error {
	if raw == optionalValueSentinel {
		raw = ""
	}
	v.flags.occurrences = append(v.flags.occurrences, permOccurrence{
		cap:  v.cap,
		kind: v.kind,
		raw:  raw,
	})
	return nil
}

// Type names the value in help output.
func (v *scopeFlagValue) Type() string { return "scopes" }

// String returns the default shown in help output; occurrences accumulate,
// so there is no meaningful current value.
func (v *scopeFlagValue) String() string { return "" }

// scopeFlagSpec describes one scoped capability's flag pair.
type scopeFlagSpec struct {
	cap       permissions.Capability
	shorthand string
	noun      string
}

// scopeFlagSpecs lists the scoped capabilities in help order with their
// allow shorthands.
var scopeFlagSpecs = []scopeFlagSpec{
	{permissions.CapRead, "R", "file read access"},
	{permissions.CapWrite, "W", "file write access"},
	{permissions.CapNet, "N", "network access"},
	{permissions.CapEnv, "E", "environment variable access"},
	{permissions.CapSys, "S", "system information access"},
	{permissions.CapRun, "", "subprocess execution"},
	{permissions.CapFFI, "", "native library loading"},
}

// registerPermissionFlags wires the full permission flag grammar onto a
// command and returns the collector the command reads at RunE time.
func registerPermissionFlags(cmd *cobra.Command) *permissionFlags {
	pf := &permissionFlags{}
	fs := cmd.Flags()

	fs.BoolVarP(&pf.allowAll, "allow-all", "A", false, "allow every capability (escape hatch)")
	fs.BoolVar(&pf.noPrompt, "no-prompt", false, "fail on missing grants instead of prompting")

	for _, spec := range scopeFlagSpecs {
		registerScopePair(fs, pf, spec)
	}

	fs.BoolVar(&pf.allowHrtime, "allow-hrtime", false, "allow high-resolution timers")
	fs.BoolVar(&pf.denyHrtime, "deny-hrtime", false, "deny high-resolution timers")

	return pf
}

// registerScopePair adds the --allow-CAP and --deny-CAP flags for one
// capability, both value-optional.
func registerScopePair(fs *pflag.FlagSet, pf *permissionFlags, spec scopeFlagSpec) {
	allowName := "allow-" + spec.cap.String()
	allowValue := &scopeFlagValue{flags: pf, cap: spec.cap, kind: permissions.RuleAllow}
	if spec.shorthand != "" {
		fs.VarP(allowValue, allowName, spec.shorthand, "allow "+spec.noun+", optionally scoped")
	} else {
		fs.Var(allowValue, allowName, "allow "+spec.noun+", optionally scoped")
	}
	fs.Lookup(allowName).NoOptDefVal = optionalValueSentinel

	denyName := "deny-" + spec.cap.String()
	denyValue := &scopeFlagValue{flags: pf, cap: spec.cap, kind: permissions.RuleDeny}
	fs.Var(denyValue, denyName, "deny "+spec.noun+", optionally scoped")
	fs.Lookup(denyName).NoOptDefVal = optionalValueSentinel
}

// Denied reports whether the capability appeared in a deny flag. Implicit
// grants consult this so they never fight an explicit denial.
func (pf *permissionFlags) Denied(cap permissions.Capability) bool {
	for _, occ := range pf.occurrences {
		if occ.cap == cap && occ.kind == permissions.RuleDeny {
			return true
		}
	}
	return false
}

// Builder replays the recorded flag occurrences into a descriptor builder.
// The first malformed or conflicting occurrence aborts with its parse error.
func (pf *permissionFlags) Builder(baseDir types.FilesystemPath) (*permissions.Builder, error) {
	b := permissions.NewBuilder(baseDir)
	if pf.allowAll {
		b.AllowAll()
	}
	if pf.noPrompt {
		b.NoPrompt()
	}
	for _, occ := range pf.occurrences {
		var err error
		if occ.kind == permissions.RuleAllow {
			err = b.Allow(occ.cap, occ.raw)
		} else {
			err = b.Deny(occ.cap, occ.raw)
		}
		if err != nil {
			return nil, fmt.Errorf("--%s-%s: %w", kindFlagPrefix(occ.kind), occ.cap, err)
		}
	}
	if pf.allowHrtime {
		if err := b.Allow(permissions.CapHrtime, ""); err != nil {
			return nil, fmt.Errorf("--allow-hrtime: %w", err)
		}
	}
	if pf.denyHrtime {
		if err := b.Deny(permissions.CapHrtime, ""); err != nil {
			return nil, fmt.Errorf("--deny-hrtime: %w", err)
		}
	}
	return b, nil
}

// BuildSet builds the immutable permission set from the recorded flags.
func (pf *permissionFlags) BuildSet(baseDir types.FilesystemPath) (*permissions.Set, error) {
	b, err := pf.Builder(baseDir)
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
}

func kindFlagPrefix(kind permissions.RuleKind) string {
	if kind == permissions.RuleDeny {
		return "deny"
	}
	return "allow"
}
