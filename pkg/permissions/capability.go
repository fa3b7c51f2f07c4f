// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"errors"
	"fmt"
)

const (
	// CapRead is filesystem read access, scoped by path.
	CapRead Capability = "read"
	// CapWrite is filesystem write access, scoped by path.
	CapWrite Capability = "write"
	// CapNet is outbound/inbound network access, scoped by host[:port].
	CapNet Capability = "net"
	// CapEnv is environment variable access, scoped by variable name.
	CapEnv Capability = "env"
	// CapRun is subprocess spawning, scoped by program name or path.
	CapRun Capability = "run"
	// CapSys is OS information API access, scoped by API name.
	CapSys Capability = "sys"
	// CapFFI is dynamic library loading, scoped by path.
	CapFFI Capability = "ffi"
	// CapHrtime is high-resolution timer access. It carries no scopes;
	// its rules are always unconditional.
	CapHrtime Capability = "hrtime"
)

// ErrInvalidCapability is the sentinel error wrapped by InvalidCapabilityError.
var ErrInvalidCapability = errors.New("invalid capability")

type (
	// Capability identifies a category of privileged operation that can be
	// granted or denied independently.
	Capability string

	// InvalidCapabilityError is returned when a Capability value is not one
	// of the defined capabilities.
	InvalidCapabilityError struct {
		Value Capability
	}
)

// Error implements the error interface.
func (e *InvalidCapabilityError) Error() string {
	return fmt.Sprintf("invalid capability %q", e.Value)
}

// Unwrap returns ErrInvalidCapability for errors.Is() compatibility.
func (e *InvalidCapabilityError) Unwrap() error { return ErrInvalidCapability }

// String returns the capability name.
func (c Capability) String() string { return string(c) }

// IsValid returns whether the Capability is one of the defined capabilities,
// and a list of validation errors if it is not.
func (c Capability) IsValid() (bool, []error) {
	switch c {
	case CapRead, CapWrite, CapNet, CapEnv, CapRun, CapSys, CapFFI, CapHrtime:
		return true, nil
	default:
		return false, []error{&InvalidCapabilityError{Value: c}}
	}
}

// Scoped reports whether grants for this capability carry scopes. Hrtime is
// the only scopeless capability: its rules are always unconditional.
func (c Capability) Scoped() bool { return c != CapHrtime }

// Capabilities returns all defined capabilities in canonical order. The
// order is fixed: it determines the token order produced by Set.Serialize,
// which must be stable across invocations.
func Capabilities() []Capability {
	return []Capability{CapRead, CapWrite, CapNet, CapEnv, CapRun, CapSys, CapFFI, CapHrtime}
}
