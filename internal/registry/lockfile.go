// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// lockfileVersion is the current lockfile schema version.
const lockfileVersion = "1"

// ErrLockfileMalformed is returned when a lockfile cannot be parsed.
var ErrLockfileMalformed = errors.New("malformed lockfile")

type (
	// Lockfile pins requirement specifiers to resolved versions. Both sides
	// use "jsr:" specifier syntax, e.g.
	// "jsr:@std/path@^1.0.0" = "jsr:@std/path@1.0.8".
	Lockfile struct {
		Version    string            `toml:"version"`
		Specifiers map[string]string `toml:"specifiers"`
	}
)

// NewLockfile returns an empty lockfile at the current schema version.
func NewLockfile() *Lockfile {
	return &Lockfile{
		Version:    lockfileVersion,
		Specifiers: make(map[string]string),
	}
}

// LoadLockfile reads and parses a TOML lockfile. A missing file yields an
// empty lockfile rather than an error, so first runs need no setup.
func LoadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewLockfile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile %q: %w", path, err)
	}
	var lf Lockfile
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrLockfileMalformed, path, err)
	}
	if lf.Specifiers == nil {
		lf.Specifiers = make(map[string]string)
	}
	if lf.Version == "" {
		lf.Version = lockfileVersion
	}
	return &lf, nil
}

// Save writes the lockfile as TOML with 0644 permissions.
func (l *Lockfile) Save(path string) error {
	data, err := toml.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to encode lockfile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write lockfile %q: %w", path, err)
	}
	return nil
}

// Pin records that a requirement resolved to an exact version.
func (l *Lockfile) Pin(req PackageReq, nv PackageNv) {
	l.Specifiers["jsr:"+req.String()] = "jsr:" + nv.String()
}

// Entries returns the parsed requirement pins, skipping entries that are
// not valid "jsr:" specifier pairs.
func (l *Lockfile) Entries() map[PackageReq]PackageNv {
	entries := make(map[PackageReq]PackageNv, len(l.Specifiers))
	for rawReq, rawNv := range l.Specifiers {
		reqSpec, ok := strings.CutPrefix(rawReq, "jsr:")
		if !ok {
			continue
		}
		nvSpec, ok := strings.CutPrefix(rawNv, "jsr:")
		if !ok {
			continue
		}
		req, err := ParsePackageReq(reqSpec)
		if err != nil {
			continue
		}
		nv, err := ParsePackageNv(nvSpec)
		if err != nil {
			continue
		}
		entries[req] = nv
	}
	return entries
}
