// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"fmt"
	"strings"

	"sandrun-cli/pkg/types"
)

// ParseTokens rebuilds a Set from serialized flag tokens, the inverse of
// Serialize. It understands exactly the token forms Serialize emits:
// "--allow-all", "--no-prompt", and "--allow-CAP[=scopes]" /
// "--deny-CAP[=scopes]". It exists for the child-process side of permission
// propagation; interactive flag parsing goes through the CLI layer instead.
func ParseTokens(tokens []string, baseDir types.FilesystemPath) (*Set, error) {
	b := NewBuilder(baseDir)
	for _, tok := range tokens {
		if err := applyToken(b, tok); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// applyToken feeds one serialized token into the builder.
func applyToken(b *Builder, tok string) error {
	name, raw, _ := strings.Cut(tok, "=")
	switch {
	case name == "--allow-all":
		b.AllowAll()
		return nil
	case name == "--no-prompt":
		b.NoPrompt()
		return nil
	case strings.HasPrefix(name, "--allow-"):
		return b.Allow(Capability(strings.TrimPrefix(name, "--allow-")), raw)
	case strings.HasPrefix(name, "--deny-"):
		return b.Deny(Capability(strings.TrimPrefix(name, "--deny-")), raw)
	default:
		return fmt.Errorf("unrecognized permission token %q", tok)
	}
}
