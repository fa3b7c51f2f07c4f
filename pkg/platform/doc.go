// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package centralizes platform-specific concerns: runtime.GOOS string
// constants and host environment-variable case sensitivity.
package platform
