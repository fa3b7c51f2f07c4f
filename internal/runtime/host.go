// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"sandrun-cli/pkg/types"
)

// HostRuntime executes scripts by spawning a configured runtime binary.
// The invocation's permission set is propagated to the child process in
// serialized flag form, so a sandrun-aware runtime re-parses an equivalent
// set instead of inheriting ambient authority.
type HostRuntime struct {
	// Binary is the runtime executable, from the runtime.host_binary config key.
	Binary string
}

// NewHostRuntime creates a host runtime for the given binary.
func NewHostRuntime(binary string) *HostRuntime {
	return &HostRuntime{Binary: binary}
}

// Name returns the runtime name.
func (r *HostRuntime) Name() string {
	return string(ModeHost)
}

// Available returns whether the configured binary is resolvable.
func (r *HostRuntime) Available() bool {
	if r.Binary == "" {
		return false
	}
	_, err := exec.LookPath(r.Binary)
	return err == nil
}

// Validate checks that a script can be executed with this runtime.
func (r *HostRuntime) Validate(ctx *ExecutionContext) error {
	if r.Binary == "" {
		return fmt.Errorf("host runtime requires the runtime.host_binary config key")
	}
	if ctx.Script == "" {
		return fmt.Errorf("no script selected for execution")
	}
	if ctx.Perms == nil {
		return fmt.Errorf("no permission set attached to execution context")
	}
	if _, err := os.Stat(ctx.Script.String()); err != nil {
		return fmt.Errorf("script not accessible: %w", err)
	}
	return nil
}

// Execute spawns the runtime binary with the serialized permission tokens,
// the script path and its arguments.
func (r *HostRuntime) Execute(ctx *ExecutionContext) *Result {
	if err := r.Validate(ctx); err != nil {
		return NewErrorResult(1, err)
	}

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	cmd := exec.CommandContext(execCtx, r.Binary, r.argv(ctx)...)
	cmd.Dir = ctx.WorkDir
	cmd.Stdin = ctx.Stdin
	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	// The child re-derives its authority from the propagated tokens; its
	// environment still goes through the env capability here.
	cmd.Env = FilterEnviron(os.Environ(), ctx.Perms)

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return NewExitCodeResult(types.ExitCode(exitErr.ExitCode()))
		}
		return NewErrorResult(1, fmt.Errorf("host runtime execution failed: %w", err))
	}

	return NewSuccessResult()
}

// argv builds the child argument vector: permission tokens first, then the
// script and its arguments after a "--" separator.
func (r *HostRuntime) argv(ctx *ExecutionContext) []string {
	args := ctx.Perms.Serialize()
	args = append(args, "--", ctx.Script.String())
	return append(args, ctx.Args...)
}
