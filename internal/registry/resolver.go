// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"
)

type (
	// MetadataSource supplies package metadata, typically a *Client. Split
	// out as an interface so the resolver can be tested without a network.
	MetadataSource interface {
		PackageInfo(ctx context.Context, name string) (*PackageInfo, error)
		PackageVersionInfo(ctx context.Context, nv PackageNv) (*VersionInfo, error)
	}

	// WorkspacePackage is a locally configured package that short-circuits
	// registry fetches: its single version and export map are served from
	// memory and resource URLs resolve under RootURL.
	WorkspacePackage struct {
		Name    string
		Version string
		Exports map[string]string
		RootURL string
	}

	// CacheResolver resolves package requirements to exact versions,
	// memoizing every lookup. Negative results are memoized too so a flaky
	// or offline registry is asked about each miss at most once; DidCache
	// evicts the negative entries after a cache refresh.
	CacheResolver struct {
		mu          sync.RWMutex
		nvByReq     map[PackageReq]*PackageNv
		infoByName  map[string]*PackageInfo
		infoByNv    map[PackageNv]*VersionInfo
		workspace   map[string]string // package name to root URL
		source      MetadataSource
		resourceURL string
		logger      *log.Logger
	}

	// ResolverOption configures a CacheResolver during construction.
	ResolverOption func(*CacheResolver)
)

// WithLockfile seeds requirement resolutions from a lockfile so locked
// requirements never consult package metadata.
func WithLockfile(lf *Lockfile) ResolverOption {
	return func(r *CacheResolver) {
		if lf == nil {
			return
		}
		for req, nv := range lf.Entries() {
			pinned := nv
			r.nvByReq[req] = &pinned
		}
	}
}

// WithWorkspacePackage registers a local package override.
func WithWorkspacePackage(pkg WorkspacePackage) ResolverOption {
	return func(r *CacheResolver) {
		nv := PackageNv{Name: pkg.Name, Version: pkg.Version}
		r.infoByName[pkg.Name] = &PackageInfo{
			Versions: map[string]VersionEntry{pkg.Version: {}},
		}
		r.infoByNv[nv] = &VersionInfo{Exports: pkg.Exports}
		r.workspace[pkg.Name] = strings.TrimRight(pkg.RootURL, "/")
	}
}

// WithResolverLogger sets the logger used for resolution diagnostics.
func WithResolverLogger(logger *log.Logger) ResolverOption {
	return func(r *CacheResolver) {
		r.logger = logger
	}
}

// NewCacheResolver constructs a resolver over the given metadata source.
// resourceURL is the base under which remote module paths are joined,
// normally the registry base URL.
func NewCacheResolver(source MetadataSource, resourceURL string, opts ...ResolverOption) *CacheResolver {
	r := &CacheResolver{
		nvByReq:     make(map[PackageReq]*PackageNv),
		infoByName:  make(map[string]*PackageInfo),
		infoByNv:    make(map[PackageNv]*VersionInfo),
		workspace:   make(map[string]string),
		source:      source,
		resourceURL: strings.TrimRight(resourceURL, "/"),
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReqToNv resolves a requirement to the highest known version that
// satisfies it. Requirements carrying a dist-tag never resolve locally.
// Both hits and misses are memoized.
func (r *CacheResolver) ReqToNv(ctx context.Context, req PackageReq) (PackageNv, bool) {
	r.mu.RLock()
	nv, ok := r.nvByReq[req]
	r.mu.RUnlock()
	if ok {
		if nv == nil {
			return PackageNv{}, false
		}
		return *nv, true
	}

	resolved := r.resolveReq(ctx, req)

	r.mu.Lock()
	r.nvByReq[req] = resolved
	r.mu.Unlock()

	if resolved == nil {
		return PackageNv{}, false
	}
	return *resolved, true
}

func (r *CacheResolver) resolveReq(ctx context.Context, req PackageReq) *PackageNv {
	if requirementTag(req.Requirement) {
		return nil
	}
	info, ok := r.PackageInfo(ctx, req.Name)
	if !ok {
		return nil
	}
	versions := make([]string, 0, len(info.Versions))
	for v := range info.Versions {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare(canonical(versions[i]), canonical(versions[j])) < 0
	})
	// Highest satisfying version whose metadata is actually fetchable wins.
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		if !requirementMatches(req.Requirement, v) {
			continue
		}
		nv := PackageNv{Name: req.Name, Version: v}
		if _, ok := r.PackageVersionInfo(ctx, nv); ok {
			return &nv
		}
	}
	return nil
}

// ResourceURL maps a requirement reference to the URL of the module backing
// its export. Workspace packages resolve under their local root URL.
func (r *CacheResolver) ResourceURL(ctx context.Context, ref ReqReference) (string, bool) {
	nv, ok := r.ReqToNv(ctx, ref.Req)
	if !ok {
		return "", false
	}
	info, ok := r.PackageVersionInfo(ctx, nv)
	if !ok {
		return "", false
	}
	path, ok := info.Export(normalizeExportName(ref.SubPath))
	if !ok {
		return "", false
	}
	path = strings.TrimPrefix(path, "./")
	r.mu.RLock()
	root, isWorkspace := r.workspace[nv.Name]
	r.mu.RUnlock()
	if isWorkspace {
		return root + "/" + path, true
	}
	return fmt.Sprintf("%s/%s/%s/%s", r.resourceURL, nv.Name, nv.Version, path), true
}

// LookupExportForPath maps a module path within a package version back to
// its export name. Paths that only differ by a declaration-file extension
// are accepted as a fallback, since tooling sometimes suggests ".js" import
// paths for ".d.ts" sources.
func (r *CacheResolver) LookupExportForPath(ctx context.Context, nv PackageNv, path string) (string, bool) {
	info, ok := r.PackageVersionInfo(ctx, nv)
	if !ok {
		return "", false
	}
	path = strings.TrimPrefix(path, "./")
	sloppyFallback := ""
	haveFallback := false
	for export, exportPath := range info.Exports {
		exportPath = strings.TrimPrefix(exportPath, "./")
		if exportPath == path {
			return strings.TrimPrefix(export, "./"), true
		}
		if !haveFallback && trimScriptExt(exportPath) == trimScriptExt(path) {
			sloppyFallback = strings.TrimPrefix(export, "./")
			haveFallback = true
		}
	}
	return sloppyFallback, haveFallback
}

// LookupReqForNv returns a memoized requirement that resolved to the given
// version, if any.
func (r *CacheResolver) LookupReqForNv(nv PackageNv) (PackageReq, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for req, resolved := range r.nvByReq {
		if resolved != nil && *resolved == nv {
			return req, true
		}
	}
	return PackageReq{}, false
}

// PackageInfo returns the memoized version listing for a package, fetching
// it from the source on first use.
func (r *CacheResolver) PackageInfo(ctx context.Context, name string) (*PackageInfo, bool) {
	r.mu.RLock()
	info, ok := r.infoByName[name]
	r.mu.RUnlock()
	if ok {
		return info, info != nil
	}

	fetched, err := r.source.PackageInfo(ctx, name)
	if err != nil {
		r.logger.Debug("package metadata fetch failed", "package", name, "error", err)
		fetched = nil
	}

	r.mu.Lock()
	r.infoByName[name] = fetched
	r.mu.Unlock()
	return fetched, fetched != nil
}

// PackageVersionInfo returns the memoized export map for an exact version,
// fetching it from the source on first use.
func (r *CacheResolver) PackageVersionInfo(ctx context.Context, nv PackageNv) (*VersionInfo, bool) {
	r.mu.RLock()
	info, ok := r.infoByNv[nv]
	r.mu.RUnlock()
	if ok {
		return info, info != nil
	}

	fetched, err := r.source.PackageVersionInfo(ctx, nv)
	if err != nil {
		r.logger.Debug("version metadata fetch failed", "package", nv, "error", err)
		fetched = nil
	}

	r.mu.Lock()
	r.infoByNv[nv] = fetched
	r.mu.Unlock()
	return fetched, fetched != nil
}

// DidCache evicts memoized negative results. Call it after the registry
// cache has been refreshed so earlier misses get another chance.
func (r *CacheResolver) DidCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for req, nv := range r.nvByReq {
		if nv == nil {
			delete(r.nvByReq, req)
		}
	}
	for name, info := range r.infoByName {
		if info == nil {
			delete(r.infoByName, name)
		}
	}
	for nv, info := range r.infoByNv {
		if info == nil {
			delete(r.infoByNv, nv)
		}
	}
}

// normalizeExportName canonicalizes an export subpath: the empty subpath,
// "/" and "." all mean the root export ".", every other subpath gets a
// "./" prefix and loses any trailing "/".
func normalizeExportName(subPath string) string {
	if subPath == "" || subPath == "/" || subPath == "." {
		return "."
	}
	switch {
	case strings.HasPrefix(subPath, "/"):
		subPath = "." + subPath
	case !strings.HasPrefix(subPath, "./"):
		subPath = "./" + subPath
	}
	return strings.TrimSuffix(subPath, "/")
}

// trimScriptExt strips both script and declaration-file extensions so that
// the two spellings of the same module compare equal.
func trimScriptExt(path string) string {
	for _, ext := range []string{".d.ts", ".d.mts", ".d.cts", ".js", ".mjs", ".cjs"} {
		if trimmed, ok := strings.CutSuffix(path, ext); ok {
			return trimmed
		}
	}
	return path
}
