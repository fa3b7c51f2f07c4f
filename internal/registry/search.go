// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/mod/semver"
)

// SearchClient serves package discovery queries (search, version listings,
// export listings) with per-query memo caches on top of a Client and a
// CacheResolver.
type SearchClient struct {
	client   *Client
	resolver *CacheResolver

	mu            sync.RWMutex
	searchCache   map[string][]string
	versionsCache map[string][]string
	exportsCache  map[PackageNv][]string
}

// NewSearchClient constructs a search client over the given client and resolver.
func NewSearchClient(client *Client, resolver *CacheResolver) *SearchClient {
	return &SearchClient{
		client:        client,
		resolver:      resolver,
		searchCache:   make(map[string][]string),
		versionsCache: make(map[string][]string),
		exportsCache:  make(map[PackageNv][]string),
	}
}

// Search returns "@scope/name" identifiers matching the query.
func (s *SearchClient) Search(ctx context.Context, query string) ([]string, error) {
	s.mu.RLock()
	names, ok := s.searchCache[query]
	s.mu.RUnlock()
	if ok {
		return names, nil
	}
	names, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.searchCache[query] = names
	s.mu.Unlock()
	return names, nil
}

// Versions returns a package's published versions, newest first.
func (s *SearchClient) Versions(ctx context.Context, name string) ([]string, error) {
	s.mu.RLock()
	versions, ok := s.versionsCache[name]
	s.mu.RUnlock()
	if ok {
		return versions, nil
	}
	info, ok := s.resolver.PackageInfo(ctx, name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrPackageNotFound)
	}
	versions = make([]string, 0, len(info.Versions))
	for v := range info.Versions {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare(canonical(versions[i]), canonical(versions[j])) > 0
	})
	s.mu.Lock()
	s.versionsCache[name] = versions
	s.mu.Unlock()
	return versions, nil
}

// Exports returns a version's export names in lexical order.
func (s *SearchClient) Exports(ctx context.Context, nv PackageNv) ([]string, error) {
	s.mu.RLock()
	exports, ok := s.exportsCache[nv]
	s.mu.RUnlock()
	if ok {
		return exports, nil
	}
	info, ok := s.resolver.PackageVersionInfo(ctx, nv)
	if !ok {
		return nil, fmt.Errorf("%s: %w", nv, ErrVersionNotFound)
	}
	exports = make([]string, 0, len(info.Exports))
	for name := range info.Exports {
		exports = append(exports, name)
	}
	sort.Strings(exports)
	s.mu.Lock()
	s.exportsCache[nv] = exports
	s.mu.Unlock()
	return exports, nil
}

// ClearCache drops all memoized query results and the resolver's negative
// entries.
func (s *SearchClient) ClearCache() {
	s.mu.Lock()
	s.searchCache = make(map[string][]string)
	s.versionsCache = make(map[string][]string)
	s.exportsCache = make(map[PackageNv][]string)
	s.mu.Unlock()
	s.resolver.DidCache()
}
