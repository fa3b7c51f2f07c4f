// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCUEPath is the sentinel error wrapped by invalid CUEPath values.
var ErrInvalidCUEPath = errors.New("invalid CUE path")

// CUEPath is a JSON-path style reference into a CUE document, as produced
// by FormatError (e.g. "cmds[0].name").
type CUEPath string

// InvalidCUEPathError provides details about an invalid CUE path.
type InvalidCUEPathError struct {
	Value CUEPath
}

// Error implements the error interface.
func (e *InvalidCUEPathError) Error() string {
	return fmt.Sprintf("invalid CUE path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidCUEPath for errors.Is() compatibility.
func (e *InvalidCUEPathError) Unwrap() error { return ErrInvalidCUEPath }

// Validate checks that the path is non-empty after trimming whitespace.
func (p CUEPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidCUEPathError{Value: p}
	}
	return nil
}

// IsValid returns true if the path passes validation.
func (p CUEPath) IsValid() bool {
	return p.Validate() == nil
}

// String returns the path as a plain string.
func (p CUEPath) String() string {
	return string(p)
}
