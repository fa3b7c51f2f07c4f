// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sandrun-cli/pkg/permissions"
	"sandrun-cli/pkg/types"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime executes scripts with the mvdan/sh interpreter, entirely
// in-process. Permission enforcement hooks into the interpreter: the open
// handler gates file access through the read and write capabilities, the
// exec handler gates external commands through the run capability, and the
// environment is filtered through the env capability before the script sees it.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string {
	return string(ModeVirtual)
}

// Available returns whether this runtime is available. The virtual runtime
// is built in and always available.
func (r *VirtualRuntime) Available() bool {
	return true
}

// Validate checks that the script exists, is readable under the permission
// set, and parses as shell syntax.
func (r *VirtualRuntime) Validate(ctx *ExecutionContext) error {
	if ctx.Script == "" {
		return fmt.Errorf("no script selected for execution")
	}
	if ctx.Perms == nil {
		return fmt.Errorf("no permission set attached to execution context")
	}
	if !ctx.Perms.Allows(permissions.CapRead, ctx.Script.String()) {
		return &PermissionError{Capability: permissions.CapRead, Target: ctx.Script.String()}
	}

	script, err := os.ReadFile(ctx.Script.String())
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	_, err = syntax.NewParser().Parse(strings.NewReader(string(script)), ctx.Script.String())
	if err != nil {
		return fmt.Errorf("script syntax error: %w", err)
	}

	return nil
}

// Execute runs a script using the virtual shell.
func (r *VirtualRuntime) Execute(ctx *ExecutionContext) *Result {
	if err := r.Validate(ctx); err != nil {
		return NewErrorResult(1, err)
	}

	script, err := os.ReadFile(ctx.Script.String())
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to read script: %w", err))
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(string(script)), ctx.Script.String())
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to parse script: %w", err))
	}

	workDir := r.getWorkDir(ctx)
	env := FilterEnviron(os.Environ(), ctx.Perms)

	opts := []interp.RunnerOption{
		interp.Dir(workDir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(ctx.Stdin, ctx.Stdout, ctx.Stderr),
		interp.ExecHandlers(r.execHandler(ctx.Perms)),
		interp.OpenHandler(r.openHandler(ctx.Perms, workDir)),
	}

	// Prepend "--" to signal end of options; without this, args like "-v"
	// or "--env=staging" are incorrectly interpreted as shell options by
	// interp.Params()
	if len(ctx.Args) > 0 {
		params := append([]string{"--"}, ctx.Args...)
		opts = append(opts, interp.Params(params...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to create interpreter: %w", err))
	}

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	err = runner.Run(execCtx, prog)
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return NewExitCodeResult(types.ExitCode(exitStatus))
		}
		var permErr *PermissionError
		if errors.As(err, &permErr) {
			return NewErrorResult(1, permErr)
		}
		return NewErrorResult(1, fmt.Errorf("script execution failed: %w", err))
	}

	return NewSuccessResult()
}

// execHandler gates external command execution through the run capability.
func (r *VirtualRuntime) execHandler(perms *permissions.Set) func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return next(ctx, args)
			}
			if !perms.Allows(permissions.CapRun, args[0]) {
				return &PermissionError{Capability: permissions.CapRun, Target: args[0]}
			}
			return next(ctx, args)
		}
	}
}

// openHandler gates file opens through the read and write capabilities.
// The standard device files stay reachable so redirections like
// "> /dev/null" keep working.
func (r *VirtualRuntime) openHandler(perms *permissions.Set, workDir string) interp.OpenHandlerFunc {
	defaultOpen := interp.DefaultOpenHandler()
	return func(ctx context.Context, path string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
		switch path {
		case "/dev/null", "/dev/stdin", "/dev/stdout", "/dev/stderr":
			return defaultOpen(ctx, path, flag, perm)
		}
		target := path
		if !filepath.IsAbs(target) {
			target = filepath.Join(workDir, target)
		}
		needed := permissions.CapRead
		if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
			needed = permissions.CapWrite
		}
		if !perms.Allows(needed, target) {
			return nil, &PermissionError{Capability: needed, Target: target}
		}
		return defaultOpen(ctx, path, flag, perm)
	}
}

// getWorkDir returns the effective working directory: the CLI override if
// set, otherwise the script's directory.
func (r *VirtualRuntime) getWorkDir(ctx *ExecutionContext) string {
	if ctx.WorkDir != "" {
		return ctx.WorkDir
	}
	return filepath.Dir(ctx.Script.String())
}
