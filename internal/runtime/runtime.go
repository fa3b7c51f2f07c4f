// SPDX-License-Identifier: MPL-2.0

// Package runtime provides the script execution runtime interface and
// implementations. Every runtime enforces the invocation's permission set:
// the virtual runtime gates file, environment and subprocess access
// in-process, and the host runtime propagates the set to the child process
// in serialized flag form.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"sandrun-cli/pkg/permissions"
	"sandrun-cli/pkg/types"
)

// Mode constants for the available execution environments.
const (
	ModeVirtual Mode = "virtual"
	ModeHost    Mode = "host"
)

// ErrPermissionDenied is the sentinel error wrapped by PermissionError.
var ErrPermissionDenied = errors.New("permission denied")

type (
	// Mode identifies an execution environment.
	Mode string

	// ExecutionContext contains all information needed to execute a script.
	ExecutionContext struct {
		// Script is the absolute path of the script to execute.
		Script types.FilesystemPath
		// Args are passed to the script as positional parameters ($1, $2, ...).
		Args []string
		// Perms is the permission set enforced during execution.
		Perms *permissions.Set
		// Context is the Go context for cancellation.
		Context context.Context
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
		// Stdin is where to read standard input.
		Stdin io.Reader
		// WorkDir overrides the working directory. Empty means the directory
		// containing the script.
		WorkDir string
		// Verbose enables verbose output.
		Verbose bool
	}

	// Result contains the result of a script execution.
	Result struct {
		// ExitCode is the exit code of the script.
		ExitCode types.ExitCode
		// Error contains any error that occurred.
		Error error
		// Output contains captured stdout (if captured).
		Output string
		// ErrOutput contains captured stderr (if captured).
		ErrOutput string
	}

	// Runtime defines the interface for script execution.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Execute runs a script in this runtime.
		Execute(ctx *ExecutionContext) *Result
		// Available returns whether this runtime is available on the current system.
		Available() bool
		// Validate checks if a script can be executed with this runtime.
		Validate(ctx *ExecutionContext) error
	}

	// PermissionError reports an operation blocked by the permission set.
	PermissionError struct {
		Capability permissions.Capability
		Target     string
	}

	// Registry holds all available runtimes.
	Registry struct {
		runtimes map[Mode]Runtime
	}
)

// Error renders the denial together with the flag that would grant it.
func (e *PermissionError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("permission denied: %s access, grant with --allow-%s", e.Capability, e.Capability)
	}
	return fmt.Sprintf("permission denied: %s access to %q, grant with --allow-%s=%s",
		e.Capability, e.Target, e.Capability, e.Target)
}

// Unwrap returns the sentinel error for errors.Is checks.
func (e *PermissionError) Unwrap() error { return ErrPermissionDenied }

// NewExecutionContext creates an execution context with standard streams and
// background cancellation.
func NewExecutionContext(script types.FilesystemPath, perms *permissions.Set) *ExecutionContext {
	return &ExecutionContext{
		Script:  script,
		Perms:   perms,
		Context: context.Background(),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Stdin:   os.Stdin,
	}
}

// Success returns true if the script executed successfully.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// NewRegistry creates a new runtime registry.
func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[Mode]Runtime),
	}
}

// Register adds a runtime to the registry.
func (r *Registry) Register(mode Mode, rt Runtime) {
	r.runtimes[mode] = rt
}

// Get returns a runtime by mode.
func (r *Registry) Get(mode Mode) (Runtime, error) {
	rt, ok := r.runtimes[mode]
	if !ok {
		return nil, fmt.Errorf("runtime '%s' not registered", mode)
	}
	return rt, nil
}

// Available returns all available runtime modes.
func (r *Registry) Available() []Mode {
	var modes []Mode
	for mode, rt := range r.runtimes {
		if rt.Available() {
			modes = append(modes, mode)
		}
	}
	return modes
}

// Execute runs a script using the runtime registered for the given mode.
func (r *Registry) Execute(mode Mode, ctx *ExecutionContext) *Result {
	rt, err := r.Get(mode)
	if err != nil {
		return NewErrorResult(1, err)
	}

	if !rt.Available() {
		return NewErrorResult(1, fmt.Errorf("runtime '%s' is not available on this system", rt.Name()))
	}

	if err := rt.Validate(ctx); err != nil {
		return NewErrorResult(1, err)
	}

	return rt.Execute(ctx)
}
