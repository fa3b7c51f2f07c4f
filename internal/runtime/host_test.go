// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"os"
	"path/filepath"
	goruntime "runtime"
	"slices"
	"strings"
	"testing"

	"sandrun-cli/pkg/permissions"
	"sandrun-cli/pkg/types"
)

// writeHostBinary creates an executable stub that prints its argv, one
// argument per line.
func writeHostBinary(t *testing.T) string {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("stub host binary requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fakeruntime")
	stub := "#!/bin/sh\nprintf '%s\\n' \"$@\"\n"
	if err := os.WriteFile(path, []byte(stub), 0o755); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestHostRuntimeAvailability(t *testing.T) {
	t.Parallel()

	if NewHostRuntime("").Available() {
		t.Error("host runtime with no binary reports available")
	}
	if NewHostRuntime("/nonexistent/sandrun-host").Available() {
		t.Error("host runtime with missing binary reports available")
	}
	if !NewHostRuntime(writeHostBinary(t)).Available() {
		t.Error("host runtime with executable stub reports unavailable")
	}
}

func TestHostRuntimePropagatesPermissionTokens(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "echo unused\n")
	b := permissions.NewBuilder("/")
	if err := b.Allow(permissions.CapRead, "/tmp"); err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if err := b.Allow(permissions.CapEnv, "PATH"); err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	set := b.Build()

	var stdout bytes.Buffer
	ctx := NewExecutionContext(script, set)
	ctx.Stdout = &stdout
	ctx.Stdin = strings.NewReader("")
	ctx.Args = []string{"first", "second"}

	result := NewHostRuntime(writeHostBinary(t)).Execute(ctx)
	if !result.Success() {
		t.Fatalf("Execute failed: exit %v, err %v", result.ExitCode, result.Error)
	}

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	want := append(set.Serialize(), "--", script.String(), "first", "second")
	if !slices.Equal(lines, want) {
		t.Errorf("child argv = %v, want %v", lines, want)
	}
}

func TestHostRuntimePropagatesExitCode(t *testing.T) {
	t.Parallel()

	if goruntime.GOOS == "windows" {
		t.Skip("stub host binary requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fakeruntime")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 7\n"), 0o755); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	script := writeScript(t, "echo unused\n")
	ctx := NewExecutionContext(script, allowAllSet(t))
	ctx.Stdin = strings.NewReader("")

	result := NewHostRuntime(path).Execute(ctx)
	if result.Error != nil {
		t.Fatalf("Execute errored: %v", result.Error)
	}
	if result.ExitCode != 7 {
		t.Errorf("ExitCode = %v, want 7", result.ExitCode)
	}
}

func TestHostRuntimeValidate(t *testing.T) {
	t.Parallel()

	binary := writeHostBinary(t)
	rt := NewHostRuntime(binary)

	script := writeScript(t, "echo hi\n")
	good := NewExecutionContext(script, allowAllSet(t))
	if err := rt.Validate(good); err != nil {
		t.Errorf("Validate failed for valid context: %v", err)
	}

	missing := NewExecutionContext(types.FilesystemPath(filepath.Join(t.TempDir(), "absent.sh")), allowAllSet(t))
	if err := rt.Validate(missing); err == nil {
		t.Error("Validate accepted a missing script")
	}

	noBinary := NewHostRuntime("")
	if err := noBinary.Validate(good); err == nil {
		t.Error("Validate accepted an unconfigured host binary")
	}
}
