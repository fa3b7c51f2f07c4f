// SPDX-License-Identifier: MPL-2.0

// Package registry resolves script module requirements against a JSR-style
// package registry. It fetches package metadata over HTTP, memoizes both
// positive and negative lookups, and seeds resolutions from a TOML lockfile
// so repeated runs stay deterministic and offline-friendly.
package registry
