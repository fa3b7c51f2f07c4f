// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the upper bound applied to user-provided CUE files
// when no explicit limit is configured.
const DefaultMaxFileSize int64 = 1 << 20 // 1 MiB

// Option configures ParseAndDecode behavior.
type Option func(*options)

type options struct {
	filename    string
	maxFileSize int64
	concrete    bool
}

func defaultOptions() options {
	return options{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
}

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// WithMaxFileSize overrides the maximum accepted input size in bytes.
func WithMaxFileSize(n int64) Option {
	return func(o *options) {
		o.maxFileSize = n
	}
}

// WithConcrete controls whether validation requires all values to be
// concrete. It defaults to true; disable it when partial configurations
// are acceptable.
func WithConcrete(concrete bool) Option {
	return func(o *options) {
		o.concrete = concrete
	}
}
