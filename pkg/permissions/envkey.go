// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"errors"
	"fmt"
	"strings"

	"sandrun-cli/pkg/platform"
)

// ErrInvalidEnvKey is the sentinel error wrapped by InvalidEnvKeyError.
var ErrInvalidEnvKey = errors.New("invalid environment variable key")

type (
	// EnvKey is an environment variable name usable as an env capability
	// scope. A valid key is non-empty and contains neither '=' nor the NUL
	// character. On hosts with case-insensitive environments the key is
	// stored uppercased so that grants match regardless of spelling.
	EnvKey string

	// InvalidEnvKeyError is returned when an env scope is empty or contains
	// a forbidden character.
	InvalidEnvKeyError struct {
		Value  EnvKey
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidEnvKeyError) Error() string {
	return fmt.Sprintf("invalid environment variable key %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidEnvKey for errors.Is() compatibility.
func (e *InvalidEnvKeyError) Unwrap() error { return ErrInvalidEnvKey }

// String returns the string representation of the EnvKey.
func (k EnvKey) String() string { return string(k) }

// Validate returns nil if the EnvKey is usable as an env scope, or a
// validation error if it is not.
func (k EnvKey) Validate() error {
	s := string(k)
	if s == "" {
		return &InvalidEnvKeyError{Value: k, Reason: "must be non-empty"}
	}
	if strings.ContainsRune(s, '=') {
		return &InvalidEnvKeyError{Value: k, Reason: "must not contain '='"}
	}
	if strings.ContainsRune(s, '\x00') {
		return &InvalidEnvKeyError{Value: k, Reason: "must not contain the NUL character"}
	}
	return nil
}

// parseEnvScope validates a raw env scope token and normalizes its case for
// the host platform.
func parseEnvScope(raw string) (Scope, error) {
	return parseEnvScopeFold(raw, platform.EnvIsCaseInsensitive())
}

// parseEnvScopeFold is the platform-independent core of parseEnvScope,
// split out so tests can exercise both case conventions on any host.
func parseEnvScopeFold(raw string, foldCase bool) (Scope, error) {
	key := EnvKey(raw)
	if err := key.Validate(); err != nil {
		return "", err
	}
	if foldCase {
		key = EnvKey(strings.ToUpper(string(key)))
	}
	return Scope(key), nil
}
