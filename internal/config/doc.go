// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/sandrun/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/sandrun/config.cue on macOS, %APPDATA%\sandrun\config.cue
// on Windows). The package provides type-safe configuration access and covers the default
// runtime mode, UI settings, permission policy, and registry client settings.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
