// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"sandrun-cli/pkg/permissions"

	"github.com/spf13/cobra"
)

// newPermissionsCommand creates the `sandrun permissions` command group.
func newPermissionsCommand() *cobra.Command {
	permsCmd := &cobra.Command{
		Use:   "permissions",
		Short: "Inspect permission descriptor sets",
	}

	permsCmd.AddCommand(newPermissionsInspectCommand())

	return permsCmd
}

// newPermissionsInspectCommand creates the `permissions inspect` subcommand.
// It takes the same permission flags as run and serve and prints the set they
// build, which is how a flag combination can be checked without executing
// anything.
func newPermissionsInspectCommand() *cobra.Command {
	var pf *permissionFlags

	inspectCmd := &cobra.Command{
		Use:   "inspect [flags]",
		Short: "Show the permission set a flag combination grants",
		Long: `Show the permission set a flag combination grants.

The flags are merged exactly as run and serve merge them, then printed as
one rule per capability followed by the canonical serialized flag form.
The serialized form is what the host runtime receives on its command line.

` + SubtitleStyle.Render("Examples:") + `
  sandrun permissions inspect --allow-read=.,/tmp --deny-env
  sandrun permissions inspect -N -A`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, err := invocationDir()
			if err != nil {
				return err
			}
			set, err := pf.BuildSet(baseDir)
			if err != nil {
				return permissionSyntaxError(err)
			}
			printPermissionSet(cmd.OutOrStdout(), set)
			return nil
		},
	}

	pf = registerPermissionFlags(inspectCmd)

	return inspectCmd
}

// printPermissionSet writes the per-capability rules and the serialized flag
// form of a descriptor set.
func printPermissionSet(w io.Writer, set *permissions.Set) {
	if set.AllowAll() {
		fmt.Fprintln(w, WarningStyle.Render("allow-all:")+" every capability is granted")
	}

	for _, c := range permissions.Capabilities() {
		rule := set.Rule(c)
		label := FlagStyle.Render(fmt.Sprintf("%-8s", c.String()))
		switch {
		case rule.Kind == permissions.RuleUnset:
			fmt.Fprintf(w, "  %s %s\n", label, SubtitleStyle.Render("unset (deny by default)"))
		case rule.Unconditional():
			kind := SuccessStyle.Render(rule.Kind.String())
			if rule.Kind == permissions.RuleDeny {
				kind = ErrorStyle.Render(rule.Kind.String())
			}
			fmt.Fprintf(w, "  %s %s (all)\n", label, kind)
		default:
			kind := SuccessStyle.Render(rule.Kind.String())
			if rule.Kind == permissions.RuleDeny {
				kind = ErrorStyle.Render(rule.Kind.String())
			}
			fmt.Fprintf(w, "  %s %s %s\n", label, kind, scopeList(rule.Scopes))
		}
	}

	if set.NoPrompt() {
		fmt.Fprintln(w, "  "+SubtitleStyle.Render("prompting disabled (--no-prompt)"))
	}

	tokens := set.Serialize()
	if len(tokens) == 0 {
		fmt.Fprintln(w, "\nserialized: "+SubtitleStyle.Render("(empty)"))
		return
	}
	fmt.Fprintln(w, "\nserialized: "+strings.Join(tokens, " "))
}

// scopeList joins rule scopes for display.
func scopeList(scopes []permissions.Scope) string {
	parts := make([]string, len(scopes))
	for i, s := range scopes {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}
