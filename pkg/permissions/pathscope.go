// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"errors"
	"fmt"

	"sandrun-cli/pkg/fspath"
	"sandrun-cli/pkg/types"
)

// ErrPathResolution is the sentinel error wrapped by PathResolutionError.
var ErrPathResolution = errors.New("cannot resolve path scope")

type (
	// PathResolutionError is returned when a relative path scope cannot be
	// resolved to an absolute path because no base directory is available.
	PathResolutionError struct {
		Value types.FilesystemPath
	}
)

// Error implements the error interface.
func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve relative path scope %q: no base directory available", e.Value)
}

// Unwrap returns ErrPathResolution for errors.Is() compatibility.
func (e *PathResolutionError) Unwrap() error { return ErrPathResolution }

// parsePathScope normalizes one read/write/ffi scope to an absolute path.
// Absolute tokens pass through cleaned; relative tokens are joined against
// baseDir, the working directory at process start. A relative token with no
// base directory is a PathResolutionError.
func parsePathScope(raw string, baseDir types.FilesystemPath) (Scope, error) {
	p := types.FilesystemPath(raw)
	if ok, errs := p.IsValid(); !ok {
		return "", errs[0]
	}
	if fspath.IsAbs(p) {
		return Scope(fspath.Clean(p)), nil
	}
	if baseDir == "" {
		return "", &PathResolutionError{Value: p}
	}
	return Scope(fspath.JoinStr(baseDir, raw)), nil
}
