// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sandrun-cli/internal/config"
	"sandrun-cli/internal/issue"
	"sandrun-cli/internal/runtime"
	"sandrun-cli/internal/watch"
	"sandrun-cli/pkg/permissions"
	"sandrun-cli/pkg/types"

	"github.com/spf13/cobra"
)

// newRunCommand creates the `sandrun run` command.
func newRunCommand() *cobra.Command {
	var (
		runtimeMode string
		dryRun      bool
		watchMode   bool
		workDir     string
		pf          *permissionFlags
	)

	runCmd := &cobra.Command{
		Use:   "run [flags] <script> [args...]",
		Short: "Run a script under an explicit permission set",
		Long: `Run a script under an explicit permission set.

Every capability starts denied. Grant what the script needs with the
--allow-* flags; --deny-* always wins over a grant for the same capability.
Scoped flags take comma-delimited values (paths, hosts, variable names);
a bare flag grants or denies the whole capability.

` + SubtitleStyle.Render("Examples:") + `
  sandrun run ./build.sh
  sandrun run --allow-read=.,/tmp --allow-env=HOME ./greet.sh
  sandrun run --allow-net=example.com:443 ./fetch.sh -- --fast
  sandrun run --runtime=host -A ./trusted.sh`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd.Context(), runOptions{
				script:      args[0],
				args:        args[1:],
				perms:       pf,
				runtimeMode: runtimeMode,
				dryRun:      dryRun,
				watchMode:   watchMode,
				workDir:     workDir,
			})
		},
	}

	runCmd.Flags().StringVar(&runtimeMode, "runtime", "", "execution runtime: virtual or host (default from config)")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the effective permission set without executing")
	runCmd.Flags().BoolVar(&watchMode, "watch", false, "re-run the script when it changes")
	runCmd.Flags().StringVar(&workDir, "workdir", "", "working directory for the script (default: script directory)")
	pf = registerPermissionFlags(runCmd)

	return runCmd
}

// runOptions carries everything runScript needs, resolved from flags.
type runOptions struct {
	script      string
	args        []string
	perms       *permissionFlags
	runtimeMode string
	dryRun      bool
	watchMode   bool
	workDir     string
}

// runScript builds the permission set and executes (or inspects) the script.
func runScript(ctx context.Context, opts runOptions) error {
	baseDir, err := invocationDir()
	if err != nil {
		return err
	}

	scriptPath := opts.script
	if !filepath.IsAbs(scriptPath) {
		scriptPath = filepath.Join(string(baseDir), scriptPath)
	}
	scriptPath = filepath.Clean(scriptPath)

	if _, err := os.Stat(scriptPath); err != nil {
		rendered, _ := issue.Get(issue.ScriptNotFoundId).Render("dark")
		fmt.Fprint(os.Stderr, rendered)
		return &ExitError{Code: 1, Err: fmt.Errorf("script not found: %s", opts.script)}
	}

	set, err := buildRunSet(opts.perms, baseDir, scriptPath)
	if err != nil {
		return permissionSyntaxError(err)
	}

	if opts.dryRun {
		printPermissionSet(os.Stdout, set)
		return nil
	}

	reg, mode, err := buildRuntimeRegistry(opts.runtimeMode)
	if err != nil {
		return err
	}

	execute := func(ctx context.Context) *runtime.Result {
		execCtx := runtime.NewExecutionContext(types.FilesystemPath(scriptPath), set)
		execCtx.Context = ctx
		execCtx.Args = opts.args
		execCtx.WorkDir = opts.workDir
		execCtx.Verbose = verbose
		return reg.Execute(mode, execCtx)
	}

	if opts.watchMode {
		return watchAndRun(ctx, scriptPath, execute)
	}

	result := execute(ctx)
	return resultToError(result)
}

// buildRunSet assembles the descriptor set for a run invocation. The script
// itself gets an implicit read grant so a bare `sandrun run ./script.sh`
// works; the grant unions with explicit scopes and never overrides a
// --deny-read.
func buildRunSet(pf *permissionFlags, baseDir types.FilesystemPath, scriptPath string) (*permissions.Set, error) {
	b, err := pf.Builder(baseDir)
	if err != nil {
		return nil, err
	}
	if !pf.Denied(permissions.CapRead) {
		b.GrantRead(scriptPath)
	}
	return b.Build(), nil
}

// watchAndRun executes once immediately, then re-executes on script changes
// until the context is cancelled.
func watchAndRun(ctx context.Context, scriptPath string, execute func(context.Context) *runtime.Result) error {
	report := func(result *runtime.Result) {
		if result.Error != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+formatErrorForDisplay(result.Error, verbose))
		} else if !result.ExitCode.IsSuccess() {
			fmt.Fprintln(os.Stderr, WarningStyle.Render(fmt.Sprintf("exit status %s", result.ExitCode)))
		}
	}

	report(execute(ctx))
	fmt.Fprintln(os.Stderr, SubtitleStyle.Render("watching "+scriptPath+" (ctrl-c to stop)"))

	w, err := watch.New(watch.Config{
		BaseDir:  filepath.Dir(scriptPath),
		Patterns: []string{filepath.Base(scriptPath)},
		OnChange: func(ctx context.Context, _ []string) error {
			report(execute(ctx))
			return nil
		},
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// buildRuntimeRegistry resolves the requested runtime mode against the
// configuration and returns a registry holding both runtimes.
func buildRuntimeRegistry(flagMode string) (*runtime.Registry, runtime.Mode, error) {
	cfg := config.Get()

	mode := runtime.Mode(flagMode)
	if mode == "" {
		mode = runtime.Mode(cfg.DefaultRuntime)
	}
	switch mode {
	case runtime.ModeVirtual, runtime.ModeHost:
	default:
		return nil, "", fmt.Errorf("unknown runtime %q (expected %q or %q)", mode, runtime.ModeVirtual, runtime.ModeHost)
	}

	reg := runtime.NewRegistry()
	reg.Register(runtime.ModeVirtual, runtime.NewVirtualRuntime())
	reg.Register(runtime.ModeHost, runtime.NewHostRuntime(string(cfg.Runtime.HostBinary)))
	return reg, mode, nil
}

// resultToError converts an execution result to the RunE error contract:
// nil on success, ExitError otherwise so Execute exits with the script's code.
func resultToError(result *runtime.Result) error {
	if result.Success() {
		return nil
	}
	if result.Error != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+formatErrorForDisplay(result.Error, verbose))
	}
	code := result.ExitCode
	if code.IsSuccess() {
		code = 1
	}
	return &ExitError{Code: code, Err: nil}
}

// permissionSyntaxError wraps a descriptor parse or merge failure in the
// usage-error exit code with its diagnostic, before anything executes.
func permissionSyntaxError(err error) error {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+formatErrorForDisplay(err, verbose))
	id := issue.InvalidPermissionFlagId
	if errors.Is(err, permissions.ErrConflictingAllowDeny) {
		id = issue.ConflictingPermissionsId
	}
	if rendered, renderErr := issue.Get(id).Render("dark"); renderErr == nil {
		fmt.Fprint(os.Stderr, rendered)
	}
	return &ExitError{Code: 2, Err: err}
}

// invocationDir is the base against which relative permission scopes and
// script paths resolve.
func invocationDir() (types.FilesystemPath, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %w", err)
	}
	return types.FilesystemPath(wd), nil
}
