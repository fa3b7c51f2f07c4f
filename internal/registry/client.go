// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// defaultBaseURL is the module registry serving package metadata and sources.
	defaultBaseURL = "https://jsr.io"

	// defaultAPIURL is the management API used for package search.
	defaultAPIURL = "https://api.jsr.io"

	// defaultHTTPTimeout bounds each metadata request.
	defaultHTTPTimeout = 30 * time.Second

	// maxJSONResponseBytes is the upper bound on JSON API response size (10 MB).
	// Prevents unbounded memory consumption from malicious or malformed responses.
	maxJSONResponseBytes = 10 << 20
)

var (
	// ErrPackageNotFound is returned when the registry has no such package.
	ErrPackageNotFound = errors.New("package not found")

	// ErrVersionNotFound is returned when a package exists but the requested
	// version does not.
	ErrVersionNotFound = errors.New("package version not found")
)

type (
	// PackageInfo is the registry's per-package metadata: the set of
	// published versions.
	PackageInfo struct {
		Versions map[string]VersionEntry
	}

	// VersionEntry carries per-version publication state.
	VersionEntry struct {
		Yanked bool
	}

	// VersionInfo is the registry's per-version metadata: the export map
	// from export names to module paths within the package.
	VersionInfo struct {
		Exports map[string]string
	}

	// packageInfoWire is the JSON wire format of <name>/meta.json.
	packageInfoWire struct {
		Versions map[string]versionEntryWire `json:"versions"`
	}

	versionEntryWire struct {
		Yanked bool `json:"yanked"`
	}

	// versionInfoWire is the JSON wire format of <name>/<version>_meta.json.
	versionInfoWire struct {
		Exports map[string]string `json:"exports"`
	}

	// searchResponseWire is the JSON wire format of the search API response.
	searchResponseWire struct {
		Items []searchItemWire `json:"items"`
	}

	searchItemWire struct {
		Scope        string `json:"scope"`
		Name         string `json:"name"`
		VersionCount int    `json:"versionCount"`
	}

	// Client queries a JSR-style registry for package metadata and search
	// results.
	Client struct {
		httpClient *http.Client
		baseURL    string // Module registry base URL (default: "https://jsr.io")
		apiURL     string // Management API base URL (default: "https://api.jsr.io")
		userAgent  string // User-Agent header value
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

// Export returns the module path for the given normalized export name.
func (v *VersionInfo) Export(name string) (string, bool) {
	path, ok := v.Exports[name]
	return path, ok
}

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL overrides the module registry base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(cl *Client) {
		cl.baseURL = strings.TrimRight(base, "/")
	}
}

// WithAPIURL overrides the management API base URL.
func WithAPIURL(api string) ClientOption {
	return func(cl *Client) {
		cl.apiURL = strings.TrimRight(api, "/")
	}
}

// WithUserAgent overrides the User-Agent header sent with requests.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// NewClient constructs a registry client with sane defaults, applying any options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    defaultBaseURL,
		apiURL:     defaultAPIURL,
		userAgent:  "sandrun",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the module registry base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PackageInfo fetches the version listing for a package.
func (c *Client) PackageInfo(ctx context.Context, name string) (*PackageInfo, error) {
	body, err := c.doRequest(ctx, fmt.Sprintf("%s/%s/meta.json", c.baseURL, name), ErrPackageNotFound)
	if err != nil {
		return nil, err
	}
	var wire packageInfoWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse package metadata for %q: %w", name, err)
	}
	info := &PackageInfo{Versions: make(map[string]VersionEntry, len(wire.Versions))}
	for v, entry := range wire.Versions {
		info.Versions[v] = VersionEntry{Yanked: entry.Yanked}
	}
	return info, nil
}

// PackageVersionInfo fetches the export map for an exact package version.
func (c *Client) PackageVersionInfo(ctx context.Context, nv PackageNv) (*VersionInfo, error) {
	body, err := c.doRequest(ctx, fmt.Sprintf("%s/%s/%s_meta.json", c.baseURL, nv.Name, nv.Version), ErrVersionNotFound)
	if err != nil {
		return nil, err
	}
	var wire versionInfoWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse version metadata for %q: %w", nv, err)
	}
	return &VersionInfo{Exports: wire.Exports}, nil
}

// Search queries the management API for packages matching the query and
// returns their "@scope/name" identifiers. Packages without any published
// version are filtered out.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	searchURL := fmt.Sprintf("%s/packages?query=%s", c.apiURL, url.QueryEscape(query))
	body, err := c.doRequest(ctx, searchURL, ErrPackageNotFound)
	if err != nil {
		return nil, err
	}
	var wire searchResponseWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	names := make([]string, 0, len(wire.Items))
	for _, item := range wire.Items {
		if item.VersionCount == 0 {
			continue
		}
		names = append(names, fmt.Sprintf("@%s/%s", item.Scope, item.Name))
	}
	return names, nil
}

// doRequest performs a GET and returns the size-limited response body.
// A 404 is mapped to the provided sentinel error.
func (c *Client) doRequest(ctx context.Context, rawURL string, notFound error) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", rawURL, notFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("registry returned status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read registry response: %w", err)
	}
	return body, nil
}
