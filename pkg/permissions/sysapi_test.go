// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"errors"
	"testing"
)

func TestSysAPIIsValid(t *testing.T) {
	t.Parallel()

	for _, api := range SysAPIs() {
		if ok, errs := api.IsValid(); !ok {
			t.Errorf("SysAPI(%q).IsValid() = false, errs %v", api, errs)
		}
	}

	invalid := []SysAPI{"", "reboot", "Hostname", "os-release"}
	for _, api := range invalid {
		ok, errs := api.IsValid()
		if ok {
			t.Errorf("SysAPI(%q).IsValid() = true, want false", api)
			continue
		}
		if len(errs) == 0 || !errors.Is(errs[0], ErrUnknownSysAPI) {
			t.Errorf("SysAPI(%q) errors do not wrap ErrUnknownSysAPI: %v", api, errs)
		}
	}
}

func TestParseSysScope(t *testing.T) {
	t.Parallel()

	got, err := parseSysScope("hostname")
	if err != nil {
		t.Fatalf("parseSysScope(\"hostname\") error = %v", err)
	}
	if got != "hostname" {
		t.Errorf("parseSysScope(\"hostname\") = %q, want %q", got, "hostname")
	}

	if _, err := parseSysScope("notAnApi"); !errors.Is(err, ErrUnknownSysAPI) {
		t.Errorf("parseSysScope(\"notAnApi\") error = %v, want ErrUnknownSysAPI", err)
	}
}
