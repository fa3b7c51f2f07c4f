// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"
	"testing"
)

// fakeSource is an in-memory MetadataSource that counts fetches so tests
// can assert on memoization.
type fakeSource struct {
	packages     map[string]*PackageInfo
	versions     map[PackageNv]*VersionInfo
	infoCalls    int
	versionCalls int
}

func (f *fakeSource) PackageInfo(_ context.Context, name string) (*PackageInfo, error) {
	f.infoCalls++
	info, ok := f.packages[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrPackageNotFound)
	}
	return info, nil
}

func (f *fakeSource) PackageVersionInfo(_ context.Context, nv PackageNv) (*VersionInfo, error) {
	f.versionCalls++
	info, ok := f.versions[nv]
	if !ok {
		return nil, fmt.Errorf("%s: %w", nv, ErrVersionNotFound)
	}
	return info, nil
}

func newFakeSource() *fakeSource {
	rootExports := map[string]string{
		".":        "./mod.ts",
		"./posix":  "./posix/mod.ts",
		"./assert": "./assert.d.ts",
	}
	return &fakeSource{
		packages: map[string]*PackageInfo{
			"@std/path": {
				Versions: map[string]VersionEntry{
					"0.9.0": {},
					"1.0.0": {},
					"1.0.8": {},
					"2.0.0": {},
				},
			},
		},
		versions: map[PackageNv]*VersionInfo{
			{Name: "@std/path", Version: "0.9.0"}: {Exports: rootExports},
			{Name: "@std/path", Version: "1.0.0"}: {Exports: rootExports},
			{Name: "@std/path", Version: "1.0.8"}: {Exports: rootExports},
			{Name: "@std/path", Version: "2.0.0"}: {Exports: rootExports},
		},
	}
}

func TestReqToNvPicksHighestSatisfyingVersion(t *testing.T) {
	t.Parallel()

	r := NewCacheResolver(newFakeSource(), defaultBaseURL)
	ctx := context.Background()

	tests := []struct {
		name string
		req  PackageReq
		want string
		ok   bool
	}{
		{"any version", PackageReq{Name: "@std/path"}, "2.0.0", true},
		{"caret range", PackageReq{Name: "@std/path", Requirement: "^1.0.0"}, "1.0.8", true},
		{"exact", PackageReq{Name: "@std/path", Requirement: "1.0.0"}, "1.0.0", true},
		{"tilde", PackageReq{Name: "@std/path", Requirement: "~0.9.0"}, "0.9.0", true},
		{"unsatisfiable", PackageReq{Name: "@std/path", Requirement: "^3.0.0"}, "", false},
		{"dist-tag never matches", PackageReq{Name: "@std/path", Requirement: "latest"}, "", false},
		{"unknown package", PackageReq{Name: "@std/missing"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nv, ok := r.ReqToNv(ctx, tt.req)
			if ok != tt.ok {
				t.Fatalf("ReqToNv(%v) ok = %v, want %v", tt.req, ok, tt.ok)
			}
			if ok && nv.Version != tt.want {
				t.Errorf("ReqToNv(%v) = %v, want version %s", tt.req, nv, tt.want)
			}
		})
	}
}

func TestReqToNvSkipsVersionsWithoutMetadata(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	// 2.0.0 is listed but its version metadata is unavailable.
	delete(src.versions, PackageNv{Name: "@std/path", Version: "2.0.0"})
	r := NewCacheResolver(src, defaultBaseURL)

	nv, ok := r.ReqToNv(context.Background(), PackageReq{Name: "@std/path"})
	if !ok {
		t.Fatal("ReqToNv failed, want fallback to next version")
	}
	if nv.Version != "1.0.8" {
		t.Errorf("ReqToNv version = %s, want 1.0.8", nv.Version)
	}
}

func TestResolverMemoizesLookups(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	r := NewCacheResolver(src, defaultBaseURL)
	ctx := context.Background()
	req := PackageReq{Name: "@std/path", Requirement: "^1.0.0"}

	for range 3 {
		if _, ok := r.ReqToNv(ctx, req); !ok {
			t.Fatal("ReqToNv failed")
		}
	}
	if src.infoCalls != 1 {
		t.Errorf("package info fetched %d times, want 1", src.infoCalls)
	}

	// Negative results are memoized too.
	missing := PackageReq{Name: "@std/missing"}
	infoCalls := src.infoCalls
	for range 3 {
		if _, ok := r.ReqToNv(ctx, missing); ok {
			t.Fatal("ReqToNv succeeded for unknown package")
		}
	}
	if got := src.infoCalls - infoCalls; got != 1 {
		t.Errorf("missing package fetched %d times, want 1", got)
	}
}

func TestDidCacheEvictsNegativeEntries(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	r := NewCacheResolver(src, defaultBaseURL)
	ctx := context.Background()

	missing := PackageReq{Name: "@std/missing"}
	if _, ok := r.ReqToNv(ctx, missing); ok {
		t.Fatal("ReqToNv succeeded for unknown package")
	}

	// The package appears after a cache refresh.
	src.packages["@std/missing"] = &PackageInfo{Versions: map[string]VersionEntry{"1.0.0": {}}}
	src.versions[PackageNv{Name: "@std/missing", Version: "1.0.0"}] = &VersionInfo{Exports: map[string]string{".": "./mod.ts"}}

	if _, ok := r.ReqToNv(ctx, missing); ok {
		t.Fatal("negative memo should still shadow the new package")
	}

	r.DidCache()

	nv, ok := r.ReqToNv(ctx, missing)
	if !ok {
		t.Fatal("ReqToNv failed after DidCache")
	}
	if nv.Version != "1.0.0" {
		t.Errorf("ReqToNv version = %s, want 1.0.0", nv.Version)
	}

	// Positive entries survive eviction without refetching.
	infoCalls := src.infoCalls
	r.DidCache()
	if _, ok := r.ReqToNv(ctx, missing); !ok {
		t.Fatal("ReqToNv failed for memoized package")
	}
	if src.infoCalls != infoCalls {
		t.Errorf("positive entry refetched after DidCache")
	}
}

func TestLockfileSeedsResolutions(t *testing.T) {
	t.Parallel()

	lf := NewLockfile()
	req := PackageReq{Name: "@std/path", Requirement: "^1.0.0"}
	lf.Pin(req, PackageNv{Name: "@std/path", Version: "1.0.0"})

	src := newFakeSource()
	r := NewCacheResolver(src, defaultBaseURL, WithLockfile(lf))

	nv, ok := r.ReqToNv(context.Background(), req)
	if !ok {
		t.Fatal("ReqToNv failed for locked requirement")
	}
	// The lockfile pin wins over the higher 1.0.8 in the registry.
	if nv.Version != "1.0.0" {
		t.Errorf("ReqToNv version = %s, want locked 1.0.0", nv.Version)
	}
	if src.infoCalls != 0 {
		t.Errorf("locked requirement fetched metadata %d times, want 0", src.infoCalls)
	}
}

func TestResourceURL(t *testing.T) {
	t.Parallel()

	r := NewCacheResolver(newFakeSource(), "https://jsr.example")
	ctx := context.Background()

	tests := []struct {
		name      string
		specifier string
		want      string
		ok        bool
	}{
		{
			name:      "root export",
			specifier: "jsr:@std/path@^1.0.0",
			want:      "https://jsr.example/@std/path/1.0.8/mod.ts",
			ok:        true,
		},
		{
			name:      "subpath export",
			specifier: "jsr:@std/path@^1.0.0/posix",
			want:      "https://jsr.example/@std/path/1.0.8/posix/mod.ts",
			ok:        true,
		},
		{
			name:      "trailing slash subpath",
			specifier: "jsr:@std/path@^1.0.0/posix/",
			want:      "https://jsr.example/@std/path/1.0.8/posix/mod.ts",
			ok:        true,
		},
		{
			name:      "unknown export",
			specifier: "jsr:@std/path@^1.0.0/windows",
			ok:        false,
		},
		{
			name:      "unsatisfiable requirement",
			specifier: "jsr:@std/path@^9.0.0",
			ok:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseReqReference(tt.specifier)
			if err != nil {
				t.Fatalf("ParseReqReference(%q) failed: %v", tt.specifier, err)
			}
			got, ok := r.ResourceURL(ctx, ref)
			if ok != tt.ok {
				t.Fatalf("ResourceURL(%q) ok = %v, want %v", tt.specifier, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ResourceURL(%q) = %q, want %q", tt.specifier, got, tt.want)
			}
		})
	}
}

func TestWorkspacePackageOverride(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	r := NewCacheResolver(src, defaultBaseURL, WithWorkspacePackage(WorkspacePackage{
		Name:    "@local/tools",
		Version: "0.1.0",
		Exports: map[string]string{".": "./main.ts"},
		RootURL: "file:///work/tools/",
	}))
	ctx := context.Background()

	ref, err := ParseReqReference("jsr:@local/tools")
	if err != nil {
		t.Fatalf("ParseReqReference failed: %v", err)
	}
	got, ok := r.ResourceURL(ctx, ref)
	if !ok {
		t.Fatal("ResourceURL failed for workspace package")
	}
	if want := "file:///work/tools/main.ts"; got != want {
		t.Errorf("ResourceURL = %q, want %q", got, want)
	}
	if src.infoCalls != 0 || src.versionCalls != 0 {
		t.Errorf("workspace package hit the metadata source (%d info, %d version calls)", src.infoCalls, src.versionCalls)
	}
}

func TestLookupExportForPath(t *testing.T) {
	t.Parallel()

	r := NewCacheResolver(newFakeSource(), defaultBaseURL)
	ctx := context.Background()
	nv := PackageNv{Name: "@std/path", Version: "1.0.8"}

	tests := []struct {
		name string
		path string
		want string
		ok   bool
	}{
		{"exact path", "./posix/mod.ts", "posix", true},
		{"exact path without prefix", "mod.ts", ".", true},
		{"declaration fallback for js path", "./assert.js", "assert", true},
		{"no matching export", "./windows/mod.ts", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.LookupExportForPath(ctx, nv, tt.path)
			if ok != tt.ok {
				t.Fatalf("LookupExportForPath(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("LookupExportForPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestLookupReqForNv(t *testing.T) {
	t.Parallel()

	r := NewCacheResolver(newFakeSource(), defaultBaseURL)
	ctx := context.Background()
	req := PackageReq{Name: "@std/path", Requirement: "^1.0.0"}

	if _, ok := r.LookupReqForNv(PackageNv{Name: "@std/path", Version: "1.0.8"}); ok {
		t.Fatal("LookupReqForNv succeeded before any resolution")
	}

	nv, ok := r.ReqToNv(ctx, req)
	if !ok {
		t.Fatal("ReqToNv failed")
	}
	got, ok := r.LookupReqForNv(nv)
	if !ok {
		t.Fatal("LookupReqForNv failed after resolution")
	}
	if got != req {
		t.Errorf("LookupReqForNv = %v, want %v", got, req)
	}
}

func TestNormalizeExportName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		subPath string
		want    string
	}{
		{"", "."},
		{"/", "."},
		{".", "."},
		{"posix", "./posix"},
		{"/posix", "./posix"},
		{"./posix", "./posix"},
		{"posix/", "./posix"},
		{"posix/join", "./posix/join"},
	}

	for _, tt := range tests {
		if got := normalizeExportName(tt.subPath); got != tt.want {
			t.Errorf("normalizeExportName(%q) = %q, want %q", tt.subPath, got, tt.want)
		}
	}
}
