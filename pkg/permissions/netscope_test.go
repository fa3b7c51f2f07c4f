// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"errors"
	"slices"
	"testing"

	"sandrun-cli/pkg/types"
)

func TestParseNetScopesBarePort(t *testing.T) {
	t.Parallel()

	got, err := parseNetScopes(":8000")
	if err != nil {
		t.Fatalf("parseNetScopes(\":8000\") error = %v", err)
	}
	want := []Scope{"0.0.0.0:8000", "127.0.0.1:8000", "localhost:8000"}
	if !slices.Equal(got, want) {
		t.Errorf("parseNetScopes(\":8000\") = %v, want %v", got, want)
	}
}

func TestParseNetScopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    []Scope
		wantErr bool
	}{
		{"bare hostname passes through", "example.com", []Scope{"example.com"}, false},
		{"host with port", "example.com:443", []Scope{"example.com:443"}, false},
		{"IPv4 literal", "10.0.0.1", []Scope{"10.0.0.1"}, false},
		{"IPv4 with port", "10.0.0.1:53", []Scope{"10.0.0.1:53"}, false},
		{"bracketed IPv6", "[::1]", []Scope{"[::1]"}, false},
		{"bracketed IPv6 with port", "[::1]:8000", []Scope{"[::1]:8000"}, false},
		{"bracketed wildcard IPv6", "[::]", []Scope{"[::]"}, false},
		{"hostname with hyphen and dots", "my-host.internal.example.com", []Scope{"my-host.internal.example.com"}, false},
		{"empty token", "", nil, true},
		{"unbracketed IPv6", "::1", nil, true},
		{"trailing colon without port", "example.com:", nil, true},
		{"non-numeric port", "example.com:http", nil, true},
		{"port zero", "example.com:0", nil, true},
		{"port too large", "example.com:70000", nil, true},
		{"bare port zero", ":0", nil, true},
		{"space in hostname", "exa mple.com", nil, true},
		{"slash in hostname", "example.com/path", nil, true},
		{"unclosed bracket", "[::1", nil, true},
		{"leading dot", ".example.com", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseNetScopes(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseNetScopes(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidNetAddress) {
					t.Errorf("error does not wrap ErrInvalidNetAddress: %v", err)
				}
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("parseNetScopes(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestListenScopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		port types.ListenPort
		want []Scope
	}{
		{
			name: "wildcard host expands to local aliases",
			host: "0.0.0.0",
			port: 5000,
			want: []Scope{"0.0.0.0:5000", "127.0.0.1:5000", "localhost:5000"},
		},
		{
			name: "IPv6 wildcard expands",
			host: "::",
			port: 5000,
			want: []Scope{"0.0.0.0:5000", "127.0.0.1:5000", "localhost:5000"},
		},
		{
			name: "empty host expands",
			host: "",
			port: 9000,
			want: []Scope{"0.0.0.0:9000", "127.0.0.1:9000", "localhost:9000"},
		},
		{
			name: "specific host grants single pair",
			host: "192.168.1.10",
			port: 4507,
			want: []Scope{"192.168.1.10:4507"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ListenScopes(tt.host, tt.port)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ListenScopes(%q, %d) = %v, want %v", tt.host, tt.port, got, tt.want)
			}
		})
	}
}
