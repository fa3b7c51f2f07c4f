// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"sandrun-cli/pkg/types"
)

// Common local aliases a bare-port net scope expands to. Granting ":8000"
// models "listen on all interfaces" as permission to reach the port through
// any of its usual local names.
const (
	wildcardHost = "0.0.0.0"
	loopbackHost = "127.0.0.1"
	localHost    = "localhost"
)

// ErrInvalidNetAddress is the sentinel error wrapped by InvalidNetAddressError.
var ErrInvalidNetAddress = errors.New("invalid network address")

type (
	// InvalidNetAddressError is returned when a net scope token is not a
	// syntactically valid host, host:port, or :port form.
	InvalidNetAddressError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidNetAddressError) Error() string {
	return fmt.Sprintf("invalid network address %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidNetAddress for errors.Is() compatibility.
func (e *InvalidNetAddressError) Unwrap() error { return ErrInvalidNetAddress }

// parseNetScopes normalizes one raw net scope token.
//
// A bare ":PORT" token expands to the three local aliases of that port
// (wildcard, loopback, localhost). Every other form (HOST, HOST:PORT, and
// their bracketed IPv6 variants) is validated and stored as a single scope,
// unexpanded.
func parseNetScopes(raw string) ([]Scope, error) {
	if strings.HasPrefix(raw, ":") && !strings.Contains(raw[1:], ":") {
		port, err := parseNetPort(raw, raw[1:])
		if err != nil {
			return nil, err
		}
		return expandBarePort(port), nil
	}

	scope, err := parseHostPort(raw)
	if err != nil {
		return nil, err
	}
	return []Scope{scope}, nil
}

// expandBarePort returns the three-alias expansion of a bare port grant.
func expandBarePort(port types.ListenPort) []Scope {
	return []Scope{
		Scope(net.JoinHostPort(wildcardHost, port.String())),
		Scope(net.JoinHostPort(loopbackHost, port.String())),
		Scope(net.JoinHostPort(localHost, port.String())),
	}
}

// ListenScopes returns the net scopes implicitly granted to a server
// listening on host:port. Listening on a wildcard address grants the full
// bare-port expansion; any other host grants that single host:port pair.
func ListenScopes(host string, port types.ListenPort) []Scope {
	switch host {
	case "", wildcardHost, "::", "[::]":
		return expandBarePort(port)
	default:
		return []Scope{Scope(net.JoinHostPort(host, port.String()))}
	}
}

// parseHostPort validates a HOST or HOST:PORT token, including bracketed
// IPv6 literals like "[::1]" and "[::1]:8000". Host-only tokens pass through
// without a port; they grant every port of that host.
func parseHostPort(raw string) (Scope, error) {
	if raw == "" {
		return "", &InvalidNetAddressError{Value: raw, Reason: "must be non-empty"}
	}

	host := raw
	portPart := ""

	switch {
	case strings.HasPrefix(raw, "["):
		// Bracketed IPv6 literal, optionally followed by :PORT.
		end := strings.Index(raw, "]")
		if end < 0 {
			return "", &InvalidNetAddressError{Value: raw, Reason: "missing closing bracket in IPv6 literal"}
		}
		ip := raw[1:end]
		if net.ParseIP(ip) == nil || !strings.Contains(ip, ":") {
			return "", &InvalidNetAddressError{Value: raw, Reason: "invalid IPv6 literal"}
		}
		rest := raw[end+1:]
		if rest != "" {
			if !strings.HasPrefix(rest, ":") {
				return "", &InvalidNetAddressError{Value: raw, Reason: "unexpected characters after IPv6 literal"}
			}
			portPart = rest[1:]
		}
		host = raw[:end+1]
	case strings.Count(raw, ":") > 1:
		return "", &InvalidNetAddressError{Value: raw, Reason: "IPv6 addresses must be bracketed"}
	case strings.Contains(raw, ":"):
		idx := strings.LastIndex(raw, ":")
		host = raw[:idx]
		portPart = raw[idx+1:]
	}

	if err := validateHostName(raw, strings.Trim(host, "[]")); err != nil {
		return "", err
	}

	if portPart == "" {
		if strings.HasSuffix(raw, ":") {
			return "", &InvalidNetAddressError{Value: raw, Reason: "missing port after ':'"}
		}
		return Scope(host), nil
	}

	port, err := parseNetPort(raw, portPart)
	if err != nil {
		return "", err
	}
	return Scope(host + ":" + port.String()), nil
}

// validateHostName performs syntactic validation of a hostname or IP.
// token is the full original token, used for error reporting.
func validateHostName(token, host string) error {
	if host == "" {
		return &InvalidNetAddressError{Value: token, Reason: "must include a host"}
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '.' || r == '_':
		default:
			return &InvalidNetAddressError{Value: token, Reason: fmt.Sprintf("invalid character %q in hostname", r)}
		}
	}
	if strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return &InvalidNetAddressError{Value: token, Reason: "hostname must not start or end with '.'"}
	}
	return nil
}

// parseNetPort validates the port component of a net scope. Unlike listen
// ports, net scope ports have no auto-select convention: 0 is invalid.
func parseNetPort(token, portPart string) (types.ListenPort, error) {
	n, err := strconv.Atoi(portPart)
	if err != nil {
		return 0, &InvalidNetAddressError{Value: token, Reason: fmt.Sprintf("invalid port %q", portPart)}
	}
	port := types.ListenPort(n)
	if err := port.Validate(); err != nil || n == 0 {
		return 0, &InvalidNetAddressError{Value: token, Reason: fmt.Sprintf("port %d out of range 1-65535", n)}
	}
	return port, nil
}
