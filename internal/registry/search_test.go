// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"
)

func newSearchFixture(t *testing.T) (*SearchClient, *atomic.Int64) {
	t.Helper()

	var hits atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET /packages", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"items": [{"scope": "std", "name": "path", "versionCount": 3}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(WithBaseURL(srv.URL), WithAPIURL(srv.URL), WithHTTPClient(srv.Client()))
	resolver := NewCacheResolver(newFakeSource(), defaultBaseURL)
	return NewSearchClient(client, resolver), &hits
}

func TestSearchClientMemoizesQueries(t *testing.T) {
	t.Parallel()

	sc, hits := newSearchFixture(t)
	ctx := context.Background()

	for range 3 {
		names, err := sc.Search(ctx, "path")
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if want := []string{"@std/path"}; !slices.Equal(names, want) {
			t.Fatalf("Search = %v, want %v", names, want)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("search endpoint hit %d times, want 1", got)
	}

	sc.ClearCache()
	if _, err := sc.Search(ctx, "path"); err != nil {
		t.Fatalf("Search failed after ClearCache: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("search endpoint hit %d times after ClearCache, want 2", got)
	}
}

func TestSearchClientVersionsNewestFirst(t *testing.T) {
	t.Parallel()

	sc, _ := newSearchFixture(t)

	versions, err := sc.Versions(context.Background(), "@std/path")
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}
	want := []string{"2.0.0", "1.0.8", "1.0.0", "0.9.0"}
	if !slices.Equal(versions, want) {
		t.Errorf("Versions = %v, want %v", versions, want)
	}

	_, err = sc.Versions(context.Background(), "@std/missing")
	if !errors.Is(err, ErrPackageNotFound) {
		t.Errorf("error = %v, want ErrPackageNotFound", err)
	}
}

func TestSearchClientExportsSorted(t *testing.T) {
	t.Parallel()

	sc, _ := newSearchFixture(t)
	ctx := context.Background()

	exports, err := sc.Exports(ctx, PackageNv{Name: "@std/path", Version: "1.0.8"})
	if err != nil {
		t.Fatalf("Exports failed: %v", err)
	}
	want := []string{".", "./assert", "./posix"}
	if !slices.Equal(exports, want) {
		t.Errorf("Exports = %v, want %v", exports, want)
	}

	_, err = sc.Exports(ctx, PackageNv{Name: "@std/path", Version: "9.9.9"})
	if !errors.Is(err, ErrVersionNotFound) {
		t.Errorf("error = %v, want ErrVersionNotFound", err)
	}
}
