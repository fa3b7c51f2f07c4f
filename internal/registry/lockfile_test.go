// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLockfileMissingFile(t *testing.T) {
	t.Parallel()

	lf, err := LoadLockfile(filepath.Join(t.TempDir(), "sandrun.lock"))
	if err != nil {
		t.Fatalf("LoadLockfile failed for missing file: %v", err)
	}
	if len(lf.Specifiers) != 0 {
		t.Errorf("missing lockfile yielded %d specifiers, want 0", len(lf.Specifiers))
	}
	if lf.Version != lockfileVersion {
		t.Errorf("Version = %q, want %q", lf.Version, lockfileVersion)
	}
}

func TestLockfileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sandrun.lock")
	lf := NewLockfile()
	req := PackageReq{Name: "@std/path", Requirement: "^1.0.0"}
	nv := PackageNv{Name: "@std/path", Version: "1.0.8"}
	lf.Pin(req, nv)

	if err := lf.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile failed: %v", err)
	}
	entries := loaded.Entries()
	got, ok := entries[req]
	if !ok {
		t.Fatalf("entries = %v, want pin for %v", entries, req)
	}
	if got != nv {
		t.Errorf("entry = %v, want %v", got, nv)
	}
}

func TestLockfileEntriesSkipsForeignSpecifiers(t *testing.T) {
	t.Parallel()

	lf := &Lockfile{
		Version: lockfileVersion,
		Specifiers: map[string]string{
			"jsr:@std/path@^1.0.0": "jsr:@std/path@1.0.8",
			"npm:chalk@^5.0.0":     "npm:chalk@5.3.0",
			"jsr:not-a-package":    "jsr:@std/path@1.0.8",
			"jsr:@std/fs@^1.0.0":   "jsr:@std/fs@^1.0.0",
		},
	}

	entries := lf.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries = %v, want exactly the valid jsr pin", entries)
	}
	want := PackageNv{Name: "@std/path", Version: "1.0.8"}
	if got := entries[PackageReq{Name: "@std/path", Requirement: "^1.0.0"}]; got != want {
		t.Errorf("entry = %v, want %v", got, want)
	}
}

func TestLoadLockfileMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sandrun.lock")
	if err := os.WriteFile(path, []byte("version = [broken"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := LoadLockfile(path)
	if !errors.Is(err, ErrLockfileMalformed) {
		t.Errorf("error = %v, want ErrLockfileMalformed", err)
	}
}
