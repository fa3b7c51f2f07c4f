// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// EnvIsCaseInsensitive reports whether the host OS treats environment
// variable names case-insensitively. Windows is the only such platform among
// the supported targets; PATH, Path, and path all name the same variable
// there, so callers that key maps by variable name must fold case first.
func EnvIsCaseInsensitive() bool {
	return runtime.GOOS == Windows
}
