// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"errors"
	"fmt"
)

const (
	// SysHostname reports the machine hostname.
	SysHostname SysAPI = "hostname"
	// SysOSRelease reports the kernel release string.
	SysOSRelease SysAPI = "osRelease"
	// SysOSUptime reports seconds since boot.
	SysOSUptime SysAPI = "osUptime"
	// SysLoadavg reports the 1/5/15 minute load averages.
	SysLoadavg SysAPI = "loadavg"
	// SysNetworkInterfaces enumerates network interfaces and addresses.
	SysNetworkInterfaces SysAPI = "networkInterfaces"
	// SysSystemMemoryInfo reports system-wide memory statistics.
	SysSystemMemoryInfo SysAPI = "systemMemoryInfo"
	// SysUID reports the numeric user id of the process.
	SysUID SysAPI = "uid"
	// SysGID reports the numeric group id of the process.
	SysGID SysAPI = "gid"
	// SysUsername reports the login name of the current user.
	SysUsername SysAPI = "username"
	// SysCPUs reports the logical CPU count.
	SysCPUs SysAPI = "cpus"
	// SysHomedir reports the current user's home directory.
	SysHomedir SysAPI = "homedir"
	// SysStatfs reports filesystem statistics for a path.
	SysStatfs SysAPI = "statfs"
	// SysGetPriority reads process scheduling priority.
	SysGetPriority SysAPI = "getPriority"
	// SysSetPriority changes process scheduling priority.
	SysSetPriority SysAPI = "setPriority"
)

// ErrUnknownSysAPI is the sentinel error wrapped by UnknownSysAPIError.
var ErrUnknownSysAPI = errors.New("unknown system API")

type (
	// SysAPI names one OS-information API gated by the sys capability.
	// The set of recognized names is a fixed enumeration; sys scopes
	// naming anything else are rejected at parse time.
	SysAPI string

	// UnknownSysAPIError is returned when a sys scope does not name a
	// recognized OS-information API.
	UnknownSysAPIError struct {
		Value SysAPI
	}
)

// Error implements the error interface.
func (e *UnknownSysAPIError) Error() string {
	return fmt.Sprintf("unknown system API %q (run 'sandrun permissions inspect --help' for the recognized names)", e.Value)
}

// Unwrap returns ErrUnknownSysAPI for errors.Is() compatibility.
func (e *UnknownSysAPIError) Unwrap() error { return ErrUnknownSysAPI }

// String returns the API name.
func (a SysAPI) String() string { return string(a) }

// IsValid returns whether the SysAPI is one of the recognized OS-information
// API names, and a list of validation errors if it is not.
func (a SysAPI) IsValid() (bool, []error) {
	switch a {
	case SysHostname, SysOSRelease, SysOSUptime, SysLoadavg,
		SysNetworkInterfaces, SysSystemMemoryInfo, SysUID, SysGID,
		SysUsername, SysCPUs, SysHomedir, SysStatfs,
		SysGetPriority, SysSetPriority:
		return true, nil
	default:
		return false, []error{&UnknownSysAPIError{Value: a}}
	}
}

// SysAPIs returns all recognized OS-information API names.
func SysAPIs() []SysAPI {
	return []SysAPI{
		SysHostname, SysOSRelease, SysOSUptime, SysLoadavg,
		SysNetworkInterfaces, SysSystemMemoryInfo, SysUID, SysGID,
		SysUsername, SysCPUs, SysHomedir, SysStatfs,
		SysGetPriority, SysSetPriority,
	}
}

// parseSysScope validates a raw sys scope token against the fixed API
// enumeration.
func parseSysScope(raw string) (Scope, error) {
	api := SysAPI(raw)
	if ok, _ := api.IsValid(); !ok {
		return "", &UnknownSysAPIError{Value: api}
	}
	return Scope(api), nil
}
