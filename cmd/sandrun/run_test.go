// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"sandrun-cli/internal/runtime"
	"sandrun-cli/pkg/permissions"
	"sandrun-cli/pkg/types"
)

func TestBuildRunSetGrantsScriptRead(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	script := filepath.Join(base, "task.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	pf := parsePermFlags(t)
	set, err := buildRunSet(pf, types.FilesystemPath(base), script)
	if err != nil {
		t.Fatalf("buildRunSet() error = %v", err)
	}

	if !set.Allows(permissions.CapRead, script) {
		t.Error("script did not receive an implicit read grant")
	}
	if set.Allows(permissions.CapRead, filepath.Join(base, "other.txt")) {
		t.Error("implicit grant covers more than the script")
	}
}

func TestBuildRunSetRespectsExplicitDeny(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	script := filepath.Join(base, "task.sh")

	pf := parsePermFlags(t, "--deny-read")
	set, err := buildRunSet(pf, types.FilesystemPath(base), script)
	if err != nil {
		t.Fatalf("buildRunSet() error = %v", err)
	}

	if set.Allows(permissions.CapRead, script) {
		t.Error("implicit grant overrode an explicit --deny-read")
	}
}

func TestBuildRunSetUnionsWithExplicitScopes(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	script := filepath.Join(base, "task.sh")

	pf := parsePermFlags(t, "--allow-read=/srv/data")
	set, err := buildRunSet(pf, types.FilesystemPath(base), script)
	if err != nil {
		t.Fatalf("buildRunSet() error = %v", err)
	}

	if !set.Allows(permissions.CapRead, script) {
		t.Error("implicit script grant missing alongside explicit scopes")
	}
	if !set.Allows(permissions.CapRead, "/srv/data/file") {
		t.Error("explicit scope lost when the implicit grant was unioned")
	}
}

func TestBuildServeSetImplicitGrants(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	dir := filepath.Join(base, "site")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	pf := parsePermFlags(t)
	set, err := buildServeSet(pf, types.FilesystemPath(base), dir, "127.0.0.1", 8080)
	if err != nil {
		t.Fatalf("buildServeSet() error = %v", err)
	}

	if !set.Allows(permissions.CapNet, "127.0.0.1:8080") {
		t.Error("listen address did not receive an implicit net grant")
	}
	if !set.Allows(permissions.CapRead, filepath.Join(dir, "index.html")) {
		t.Error("served directory did not receive an implicit read grant")
	}
	if set.Allows(permissions.CapNet, "example.com:443") {
		t.Error("implicit net grant covers unrelated hosts")
	}
}

func TestBuildServeSetDenyNetWins(t *testing.T) {
	t.Parallel()

	base := t.TempDir()

	pf := parsePermFlags(t, "--deny-net")
	set, err := buildServeSet(pf, types.FilesystemPath(base), base, "127.0.0.1", 8080)
	if err != nil {
		t.Fatalf("buildServeSet() error = %v", err)
	}

	if set.Allows(permissions.CapNet, "127.0.0.1:8080") {
		t.Error("implicit listen grant overrode an explicit --deny-net")
	}
}

func TestBuildRuntimeRegistryRejectsUnknownMode(t *testing.T) {
	if _, _, err := buildRuntimeRegistry("container"); err == nil {
		t.Fatal("buildRuntimeRegistry(container) should fail")
	}
}

func TestResultToError(t *testing.T) {
	t.Parallel()

	if err := resultToError(runtime.NewSuccessResult()); err != nil {
		t.Errorf("success result mapped to error %v", err)
	}

	err := resultToError(runtime.NewExitCodeResult(7))
	var exitErr *ExitError
	if !asExitError(err, &exitErr) {
		t.Fatalf("non-zero result error = %T, want *ExitError", err)
	}
	if exitErr.Code != 7 {
		t.Errorf("Code = %d, want 7", exitErr.Code)
	}
}

func asExitError(err error, target **ExitError) bool {
	e, ok := err.(*ExitError)
	if ok {
		*target = e
	}
	return ok
}
