// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"errors"
	"fmt"
	"strings"

	"sandrun-cli/pkg/types"
)

// ErrMalformedToken is the sentinel error wrapped by MalformedTokenError.
var ErrMalformedToken = errors.New("malformed scope list")

type (
	// MalformedTokenError is returned for structurally garbled scope lists,
	// such as an empty entry produced by doubled or trailing commas.
	MalformedTokenError struct {
		Value      string
		Capability Capability
	}
)

// Error implements the error interface.
func (e *MalformedTokenError) Error() string {
	return fmt.Sprintf("malformed %s scope list %q: empty entry", e.Capability, e.Value)
}

// Unwrap returns ErrMalformedToken for errors.Is() compatibility.
func (e *MalformedTokenError) Unwrap() error { return ErrMalformedToken }

// parseScopes turns the raw comma-delimited value of one flag occurrence
// into normalized scopes for the given capability. An empty raw value means
// the flag was given without scopes and yields the empty (unconditional)
// scope list. Scope entries are validated per capability:
//
//   - read/write/ffi: resolved to absolute paths against baseDir
//   - env: validated variable names, case-folded on case-insensitive hosts
//   - net: validated host[:port]; bare :PORT expands to its local aliases
//   - sys: checked against the fixed OS-information API enumeration
//   - run: opaque program names, passed through unchanged
func parseScopes(cap Capability, raw string, baseDir types.FilesystemPath) ([]Scope, error) {
	if raw == "" {
		return nil, nil
	}

	var scopes []Scope
	for _, token := range strings.Split(raw, ",") {
		if strings.TrimSpace(token) == "" {
			return nil, &MalformedTokenError{Value: raw, Capability: cap}
		}
		parsed, err := parseScopeToken(cap, token, baseDir)
		if err != nil {
			return nil, err
		}
		for _, s := range parsed {
			scopes = appendScope(scopes, s)
		}
	}
	return scopes, nil
}

// parseScopeToken normalizes a single scope token for the given capability.
func parseScopeToken(cap Capability, token string, baseDir types.FilesystemPath) ([]Scope, error) {
	switch cap {
	case CapRead, CapWrite, CapFFI:
		s, err := parsePathScope(token, baseDir)
		if err != nil {
			return nil, err
		}
		return []Scope{s}, nil
	case CapEnv:
		s, err := parseEnvScope(token)
		if err != nil {
			return nil, err
		}
		return []Scope{s}, nil
	case CapNet:
		return parseNetScopes(token)
	case CapSys:
		s, err := parseSysScope(token)
		if err != nil {
			return nil, err
		}
		return []Scope{s}, nil
	case CapRun:
		// Run scopes are opaque: the enforcement point resolves program
		// names against PATH at spawn time, not at flag-parse time.
		return []Scope{Scope(token)}, nil
	case CapHrtime:
		return nil, &MalformedTokenError{Value: token, Capability: cap}
	default:
		return nil, &InvalidCapabilityError{Value: cap}
	}
}
