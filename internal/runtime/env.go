// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"strings"

	"sandrun-cli/pkg/permissions"
)

// FilterEnviron filters an environment slice through the env capability:
// only variables the permission set explicitly allows are passed to the
// script. Malformed entries without a '=' separator are dropped.
func FilterEnviron(environ []string, perms *permissions.Set) []string {
	result := make([]string, 0, len(environ))
	for _, e := range environ {
		name, _, ok := strings.Cut(e, "=")
		if !ok || name == "" {
			continue
		}
		if !perms.Allows(permissions.CapEnv, name) {
			continue
		}
		result = append(result, e)
	}
	return result
}
