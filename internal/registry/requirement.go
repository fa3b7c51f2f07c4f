// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// isExactVersion reports whether raw is a plain semantic version with no
// range operator.
func isExactVersion(raw string) bool {
	if raw == "" || strings.HasPrefix(raw, "^") || strings.HasPrefix(raw, "~") {
		return false
	}
	return semver.IsValid(canonical(raw))
}

// requirementTag reports whether the requirement is a dist-tag (e.g.
// "latest") rather than a version range. Tags are resolved by the registry
// at publish time and never match cached versions locally.
func requirementTag(requirement string) bool {
	switch requirement {
	case "", "*":
		return false
	}
	base := strings.TrimLeft(requirement, "^~")
	return !semver.IsValid(canonical(base))
}

// requirementMatches reports whether version satisfies the requirement.
// Supported forms: empty or "*" (any), exact, caret, and tilde ranges.
func requirementMatches(requirement, version string) bool {
	v := canonical(version)
	if !semver.IsValid(v) {
		return false
	}
	switch {
	case requirement == "" || requirement == "*":
		return true
	case strings.HasPrefix(requirement, "^"):
		return caretMatches(canonical(requirement[1:]), v)
	case strings.HasPrefix(requirement, "~"):
		return tildeMatches(canonical(requirement[1:]), v)
	default:
		return semver.Compare(canonical(requirement), v) == 0
	}
}

// caretMatches implements "^base": compatible within the leftmost non-zero
// version component. "^0.2.3" pins the minor and "^0.0.3" pins the patch.
func caretMatches(base, v string) bool {
	if !semver.IsValid(base) || semver.Compare(v, base) < 0 {
		return false
	}
	if semver.Major(base) != "v0" {
		return semver.Major(v) == semver.Major(base)
	}
	if semver.MajorMinor(v) != semver.MajorMinor(base) {
		return false
	}
	if minorComponent(base) != 0 {
		return true
	}
	return patchComponent(v) == patchComponent(base)
}

// tildeMatches implements "~base": same major and minor, patch at or above.
func tildeMatches(base, v string) bool {
	if !semver.IsValid(base) || semver.Compare(v, base) < 0 {
		return false
	}
	return semver.MajorMinor(v) == semver.MajorMinor(base)
}

func canonical(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

func minorComponent(v string) int {
	mm := semver.MajorMinor(v)
	_, minor, ok := strings.Cut(mm, ".")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(minor)
	if err != nil {
		return 0
	}
	return n
}

func patchComponent(v string) int {
	v = strings.TrimPrefix(semver.Canonical(v), semver.MajorMinor(v))
	v = strings.TrimPrefix(v, ".")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
