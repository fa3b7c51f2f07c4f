// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"

	"sandrun-cli/pkg/types"
)

// Package-level cache for the commonly used "load once, read everywhere"
// flow of the CLI. Commands that need explicit control use Provider instead.
var (
	globalConfig *Config
	configPath   string

	// configDirOverride allows tests to override the config directory.
	// This is necessary because os.UserHomeDir() doesn't reliably respect
	// the HOME environment variable on all platforms (e.g., macOS in CI).
	configDirOverride string

	// configFileOverride pins the config file path, set from the --config flag.
	configFileOverride string
)

// Load reads the configuration from disk (or defaults) and caches it.
func Load() (*Config, error) {
	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: types.FilesystemPath(configFileOverride),
	})
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	configPath = path
	return cfg, nil
}

// Get returns the cached configuration, loading it on first use.
// It falls back to defaults when loading fails; callers that need to
// surface load errors use Load or Provider directly.
func Get() *Config {
	if globalConfig != nil {
		return globalConfig
	}
	cfg, err := Load()
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// Path returns the resolved path of the loaded config file, or "" when
// running on defaults.
func Path() string {
	return configPath
}

// ResetCache clears the cached configuration so the next Get or Load
// re-reads from disk. Test overrides are preserved.
func ResetCache() {
	globalConfig = nil
	configPath = ""
}

// Reset clears the cache and all test overrides. Call from test cleanup
// to restore defaults.
func Reset() {
	ResetCache()
	configDirOverride = ""
	configFileOverride = ""
}

// SetConfigFilePathOverride pins the config file to an explicit path,
// bypassing the search locations. Used by the --config flag.
func SetConfigFilePathOverride(path string) {
	configFileOverride = path
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms (e.g., macOS in CI).
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
