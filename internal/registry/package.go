// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSpecifier is returned when a package specifier cannot be parsed.
var ErrInvalidSpecifier = errors.New("invalid package specifier")

type (
	// PackageReq names a package together with a version requirement,
	// e.g. "@std/path" constrained by "^1.0.0". An empty Requirement
	// (or "*") matches any version.
	PackageReq struct {
		Name        string
		Requirement string
	}

	// PackageNv names a package at an exact resolved version.
	PackageNv struct {
		Name    string
		Version string
	}

	// ReqReference is a parsed "jsr:" specifier: a package requirement plus
	// an optional export subpath, e.g. "jsr:@std/path@^1.0.0/posix".
	ReqReference struct {
		Req     PackageReq
		SubPath string
	}

	// InvalidSpecifierError reports a specifier that failed to parse.
	InvalidSpecifierError struct {
		Specifier string
		Reason    string
	}
)

// Error formats the specifier and the reason it was rejected.
func (e *InvalidSpecifierError) Error() string {
	return fmt.Sprintf("invalid package specifier %q: %s", e.Specifier, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is checks.
func (e *InvalidSpecifierError) Unwrap() error {
	return ErrInvalidSpecifier
}

// String renders the requirement as "@scope/name" or "@scope/name@req".
func (r PackageReq) String() string {
	if r.Requirement == "" {
		return r.Name
	}
	return r.Name + "@" + r.Requirement
}

// String renders the resolved package as "@scope/name@version".
func (n PackageNv) String() string {
	return n.Name + "@" + n.Version
}

// ParseReqReference parses a "jsr:" specifier into its requirement and
// optional export subpath. The scheme prefix is mandatory.
func ParseReqReference(specifier string) (ReqReference, error) {
	rest, ok := strings.CutPrefix(specifier, "jsr:")
	if !ok {
		return ReqReference{}, &InvalidSpecifierError{Specifier: specifier, Reason: `missing "jsr:" scheme`}
	}
	// Leading slashes after the scheme are tolerated ("jsr:/@scope/name").
	rest = strings.TrimLeft(rest, "/")
	req, subPath, err := parsePackageParts(specifier, rest)
	if err != nil {
		return ReqReference{}, err
	}
	return ReqReference{Req: req, SubPath: subPath}, nil
}

// ParsePackageReq parses a bare "@scope/name" or "@scope/name@req" string.
// Subpaths are not allowed here.
func ParsePackageReq(raw string) (PackageReq, error) {
	req, subPath, err := parsePackageParts(raw, raw)
	if err != nil {
		return PackageReq{}, err
	}
	if subPath != "" {
		return PackageReq{}, &InvalidSpecifierError{Specifier: raw, Reason: "unexpected subpath"}
	}
	return req, nil
}

// ParsePackageNv parses an "@scope/name@version" string with an exact version.
func ParsePackageNv(raw string) (PackageNv, error) {
	req, err := ParsePackageReq(raw)
	if err != nil {
		return PackageNv{}, err
	}
	if req.Requirement == "" || !isExactVersion(req.Requirement) {
		return PackageNv{}, &InvalidSpecifierError{Specifier: raw, Reason: "missing exact version"}
	}
	return PackageNv{Name: req.Name, Version: req.Requirement}, nil
}

// parsePackageParts splits "@scope/name[@req][/subpath]". The specifier
// argument is only used for error reporting.
func parsePackageParts(specifier, rest string) (PackageReq, string, error) {
	if !strings.HasPrefix(rest, "@") {
		return PackageReq{}, "", &InvalidSpecifierError{Specifier: specifier, Reason: `package name must start with "@scope/"`}
	}
	slash := strings.Index(rest, "/")
	if slash <= 1 {
		return PackageReq{}, "", &InvalidSpecifierError{Specifier: specifier, Reason: "missing package name after scope"}
	}
	scope := rest[:slash]
	rest = rest[slash+1:]

	// The name runs until the version separator or the subpath.
	nameEnd := len(rest)
	if i := strings.IndexAny(rest, "@/"); i >= 0 {
		nameEnd = i
	}
	name := rest[:nameEnd]
	if name == "" {
		return PackageReq{}, "", &InvalidSpecifierError{Specifier: specifier, Reason: "empty package name"}
	}
	rest = rest[nameEnd:]

	req := PackageReq{Name: scope + "/" + name}
	if strings.HasPrefix(rest, "@") {
		rest = rest[1:]
		reqEnd := len(rest)
		if i := strings.Index(rest, "/"); i >= 0 {
			reqEnd = i
		}
		req.Requirement = rest[:reqEnd]
		if req.Requirement == "" {
			return PackageReq{}, "", &InvalidSpecifierError{Specifier: specifier, Reason: "empty version requirement"}
		}
		rest = rest[reqEnd:]
	}

	subPath := strings.TrimPrefix(rest, "/")
	return req, subPath, nil
}
