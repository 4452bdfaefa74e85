/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// options.go: Configuration options for go-fcrypt
package core

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dustin/go-humanize"

	crypto "github.com/gitrgoliveira/go-fcrypt/internal/crypto"
)

const (
	// MinBufferSize is the smallest chunk buffer accepted.
	MinBufferSize = IVSize
	// DefaultBufferSize is the chunk buffer reused for every read (256 KiB).
	DefaultBufferSize = 256 * 1024
	// MaxBufferSize bounds the chunk buffer unless FCRYPT_BUFFER_LIMIT says otherwise.
	MaxBufferSize = 64 * 1024 * 1024

	// BufferLimitEnv overrides MaxBufferSize, e.g. "128MiB".
	BufferLimitEnv = "FCRYPT_BUFFER_LIMIT"
)

// Config holds the settings shared by an Encryptor or Decryptor. Options
// mutate it; it is read-only once the Encryptor/Decryptor is built.
type Config struct {
	BufferSize       int
	KeySize          int
	Salt             []byte
	CompressionLevel int
	Format           Format
	Progress         func(float64)
	// Random is the IV source; nil means crypto/rand.
	Random io.Reader
}

// Option defines functional options for encryption/decryption.
type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		BufferSize:       DefaultBufferSize,
		KeySize:          DefaultKeySize,
		Salt:             DefaultSalt(),
		CompressionLevel: DefaultCompressionLevel,
		Format:           FormatStreamIV,
	}
}

func newConfig(opts ...Option) (*Config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.BufferSize < MinBufferSize || c.BufferSize > maxBufferSize() {
		return fmt.Errorf("%w: must be between %d and %d bytes, got %d", crypto.ErrBufferSize, MinBufferSize, maxBufferSize(), c.BufferSize)
	}
	if !validKeySize(c.KeySize) {
		return fmt.Errorf("%w: got %d", crypto.ErrInvalidKeySize, c.KeySize)
	}
	if len(c.Salt) < MinSaltSize {
		return fmt.Errorf("%w: need at least %d bytes, got %d", crypto.ErrInvalidSalt, MinSaltSize, len(c.Salt))
	}
	if !validCompressionLevel(c.CompressionLevel) {
		return fmt.Errorf("%w: got %d", crypto.ErrCompressionLevel, c.CompressionLevel)
	}
	if !c.Format.IsSupported() {
		return fmt.Errorf("%w: %s", crypto.ErrUnsupportedFormat, c.Format)
	}
	return nil
}

// maxBufferSize returns MaxBufferSize or the FCRYPT_BUFFER_LIMIT override.
func maxBufferSize() int {
	limit := MaxBufferSize
	if v, ok := os.LookupEnv(BufferLimitEnv); ok {
		if n, err := humanize.ParseBytes(v); err == nil && n > 0 && n <= uint64(math.MaxInt) {
			limit = int(n)
		}
	}
	return limit
}

// WithBufferSize sets the chunk buffer size for streaming operations.
func WithBufferSize(size int) (Option, error) {
	if size < MinBufferSize || size > maxBufferSize() {
		return nil, fmt.Errorf("%w: must be between %d and %d bytes, got %d", crypto.ErrBufferSize, MinBufferSize, maxBufferSize(), size)
	}
	return func(cfg *Config) {
		cfg.BufferSize = size
	}, nil
}

// ParseBufferSize converts a human readable size such as "256KiB" or "1MB"
// and returns the matching option.
func ParseBufferSize(s string) (Option, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", crypto.ErrBufferSize, s, err)
	}
	if n > uint64(math.MaxInt) {
		return nil, fmt.Errorf("%w: %q too large", crypto.ErrBufferSize, s)
	}
	return WithBufferSize(int(n))
}

// WithKeySize selects AES-128 (16) or AES-256 (32). The container does not
// record it, so decryption must use the same size.
func WithKeySize(size int) Option {
	return func(cfg *Config) {
		cfg.KeySize = size
	}
}

// WithSalt replaces the embedded application salt.
func WithSalt(salt []byte) Option {
	return func(cfg *Config) {
		cfg.Salt = append([]byte(nil), salt...)
	}
}

// WithCompressionLevel sets the DEFLATE level (-2 Huffman only .. 9 best).
func WithCompressionLevel(level int) Option {
	return func(cfg *Config) {
		cfg.CompressionLevel = level
	}
}

// WithProgress sets a progress callback (called at every 20% interval).
//
// The callback receives a fraction between 0.0 and 1.0 of the input file
// read so far and is called with 1.0 on success. Streams only report
// progress when a size hint is given.
func WithProgress(cb func(float64)) Option {
	return func(cfg *Config) {
		cfg.Progress = cb
	}
}

// WithRandom sets the IV source. Only tests and reproducible fixtures should
// pass anything other than crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(cfg *Config) {
		cfg.Random = r
	}
}

// WithFormat selects the container format (default: FormatStreamIV).
func WithFormat(f Format) Option {
	return func(cfg *Config) {
		cfg.Format = f
	}
}
