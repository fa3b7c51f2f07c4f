// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// RuntimeVirtual runs scripts in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"
	// RuntimeHost runs scripts by spawning the configured host runtime binary
	// with the permission grant forwarded on its command line.
	RuntimeHost RuntimeMode = "host"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidConfigRuntimeMode is returned when a config RuntimeMode value is not recognized.
	ErrInvalidConfigRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidRegistryURL is the sentinel error wrapped by InvalidRegistryURLError.
	ErrInvalidRegistryURL = errors.New("invalid registry URL")
	// ErrInvalidBinaryFilePath is returned when a BinaryFilePath value is whitespace-only.
	ErrInvalidBinaryFilePath = errors.New("invalid binary file path")
	// ErrInvalidLockfilePath is returned when a LockfilePath value is whitespace-only.
	ErrInvalidLockfilePath = errors.New("invalid lockfile path")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidRegistryConfig is the sentinel error wrapped by InvalidRegistryConfigError.
	ErrInvalidRegistryConfig = errors.New("invalid registry config")
	// ErrInvalidRuntimeConfig is the sentinel error wrapped by InvalidRuntimeConfigError.
	ErrInvalidRuntimeConfig = errors.New("invalid runtime config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// RuntimeMode specifies the execution runtime for scripts.
	RuntimeMode string

	// InvalidConfigRuntimeModeError is returned when a config RuntimeMode value is not recognized.
	// It wraps ErrInvalidConfigRuntimeMode for errors.Is() compatibility.
	InvalidConfigRuntimeModeError struct {
		Value RuntimeMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// RegistryURL represents an http(s) base URL of a package registry.
	// The zero value ("") is valid and means "use the built-in default".
	RegistryURL string

	// InvalidRegistryURLError is returned when a RegistryURL value is
	// non-empty but not an http(s) URL. It wraps ErrInvalidRegistryURL
	// for errors.Is() compatibility.
	InvalidRegistryURLError struct {
		Value RegistryURL
	}

	// BinaryFilePath represents a filesystem path to a binary executable.
	// A valid path must be non-empty and not whitespace-only.
	// The zero value ("") is valid and means "no host runtime configured".
	BinaryFilePath string

	// InvalidBinaryFilePathError is returned when a BinaryFilePath value is
	// non-empty but whitespace-only.
	InvalidBinaryFilePathError struct {
		Value BinaryFilePath
	}

	// LockfilePath represents a filesystem path to the registry lockfile.
	// The zero value ("") is valid and means "use sandrun.lock in the
	// working directory".
	LockfilePath string

	// InvalidLockfilePathError is returned when a LockfilePath value is
	// non-empty but whitespace-only.
	InvalidLockfilePathError struct {
		Value LockfilePath
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidRegistryConfigError is returned when a RegistryConfig has invalid fields.
	// It wraps ErrInvalidRegistryConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidRegistryConfigError struct {
		FieldErrors []error
	}

	// InvalidRuntimeConfigError is returned when a RuntimeConfig has invalid fields.
	// It wraps ErrInvalidRuntimeConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidRuntimeConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// DefaultRuntime sets the global default runtime mode
		DefaultRuntime RuntimeMode `json:"default_runtime" mapstructure:"default_runtime"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Permissions configures the default permission policy
		Permissions PermissionsConfig `json:"permissions" mapstructure:"permissions"`
		// Registry configures the package registry client
		Registry RegistryConfig `json:"registry" mapstructure:"registry"`
		// Runtime configures the host runtime
		Runtime RuntimeConfig `json:"runtime" mapstructure:"runtime"`
	}

	// PermissionsConfig configures the default permission policy.
	// Command-line flags always take precedence over these values.
	PermissionsConfig struct {
		// NoPrompt disables interactive permission elevation by default
		NoPrompt bool `json:"no_prompt" mapstructure:"no_prompt"`
	}

	// RegistryConfig configures the package registry client.
	RegistryConfig struct {
		// BaseURL is the registry module server (package metadata and tarballs)
		BaseURL RegistryURL `json:"base_url" mapstructure:"base_url"`
		// APIURL is the registry management API (search)
		APIURL RegistryURL `json:"api_url" mapstructure:"api_url"`
		// Lockfile overrides the lockfile location
		Lockfile LockfilePath `json:"lockfile" mapstructure:"lockfile"`
	}

	// RuntimeConfig configures the host runtime.
	RuntimeConfig struct {
		// HostBinary is the runtime binary spawned by the host runtime mode
		HostBinary BinaryFilePath `json:"host_binary" mapstructure:"host_binary"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the RegistryConfig has valid fields.
// It delegates to BaseURL.IsValid(), APIURL.IsValid(), and Lockfile.IsValid().
func (c RegistryConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.BaseURL.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.APIURL.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Lockfile.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidRegistryConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRegistryConfigError.
func (e *InvalidRegistryConfigError) Error() string {
	return fmt.Sprintf("invalid registry config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidRegistryConfig for errors.Is() compatibility.
func (e *InvalidRegistryConfigError) Unwrap() error { return ErrInvalidRegistryConfig }

// IsValid returns whether the RuntimeConfig has valid fields.
// It delegates to HostBinary.IsValid().
func (c RuntimeConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.HostBinary.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidRuntimeConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRuntimeConfigError.
func (e *InvalidRuntimeConfigError) Error() string {
	return fmt.Sprintf("invalid runtime config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidRuntimeConfig for errors.Is() compatibility.
func (e *InvalidRuntimeConfigError) Unwrap() error { return ErrInvalidRuntimeConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to DefaultRuntime.IsValid(), UI.IsValid(), Registry.IsValid(),
// and Runtime.IsValid(). Permissions has only bool fields and needs no
// validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.DefaultRuntime.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Registry.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Runtime.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the RegistryURL.
func (u RegistryURL) String() string { return string(u) }

// IsValid returns whether the RegistryURL is valid.
// The zero value ("") is valid (means "use the built-in default").
// Non-zero values must carry an http or https scheme.
func (u RegistryURL) IsValid() (bool, []error) {
	if u == "" {
		return true, nil
	}
	if strings.HasPrefix(string(u), "http://") || strings.HasPrefix(string(u), "https://") {
		return true, nil
	}
	return false, []error{&InvalidRegistryURLError{Value: u}}
}

// Error implements the error interface for InvalidRegistryURLError.
func (e *InvalidRegistryURLError) Error() string {
	return fmt.Sprintf("invalid registry URL %q: must start with http:// or https://", e.Value)
}

// Unwrap returns ErrInvalidRegistryURL for errors.Is() compatibility.
func (e *InvalidRegistryURLError) Unwrap() error { return ErrInvalidRegistryURL }

// String returns the string representation of the BinaryFilePath.
func (p BinaryFilePath) String() string { return string(p) }

// IsValid returns whether the BinaryFilePath is valid.
// The zero value ("") is valid (means "no host runtime configured").
// Non-zero values must not be whitespace-only.
func (p BinaryFilePath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidBinaryFilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidBinaryFilePathError.
func (e *InvalidBinaryFilePathError) Error() string {
	return fmt.Sprintf("invalid binary file path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidBinaryFilePath for errors.Is() compatibility.
func (e *InvalidBinaryFilePathError) Unwrap() error { return ErrInvalidBinaryFilePath }

// String returns the string representation of the LockfilePath.
func (p LockfilePath) String() string { return string(p) }

// IsValid returns whether the LockfilePath is valid.
// The zero value ("") is valid (means "use sandrun.lock in the working directory").
// Non-zero values must not be whitespace-only.
func (p LockfilePath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidLockfilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidLockfilePathError.
func (e *InvalidLockfilePathError) Error() string {
	return fmt.Sprintf("invalid lockfile path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidLockfilePath for errors.Is() compatibility.
func (e *InvalidLockfilePathError) Unwrap() error { return ErrInvalidLockfilePath }

// Error implements the error interface for InvalidConfigRuntimeModeError.
func (e *InvalidConfigRuntimeModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: virtual, host)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidConfigRuntimeModeError) Unwrap() error {
	return ErrInvalidConfigRuntimeMode
}

// String returns the string representation of the config RuntimeMode.
func (m RuntimeMode) String() string { return string(m) }

// IsValid returns whether the config RuntimeMode is one of the defined runtime modes,
// and a list of validation errors if it is not.
func (m RuntimeMode) IsValid() (bool, []error) {
	switch m {
	case RuntimeVirtual, RuntimeHost:
		return true, nil
	default:
		return false, []error{&InvalidConfigRuntimeModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultRuntime: RuntimeVirtual,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Permissions: PermissionsConfig{
			NoPrompt: false,
		},
		Registry: RegistryConfig{
			BaseURL:  "https://jsr.io",
			APIURL:   "https://api.jsr.io",
			Lockfile: "", // Will use sandrun.lock in the working directory if empty
		},
		Runtime: RuntimeConfig{
			HostBinary: "", // Host runtime unavailable if empty
		},
	}
}
