/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package config loads the fcrypt command's settings from FCRYPT_*
// environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/gitrgoliveira/go-fcrypt"
)

// Prefix is prepended to every variable name below.
const Prefix = "FCRYPT_"

// Config holds process-wide settings. Values that change the derived key
// (Salt, KeySize) must match between encryption and decryption.
type Config struct {
	// Salt overrides the embedded application salt. Its UTF-8 bytes are used.
	// Env: FCRYPT_SALT
	Salt string `env:"SALT"`

	// KeySize is the AES key size in bits, 128 or 256.
	// Env: FCRYPT_KEY_SIZE
	KeySize int `env:"KEY_SIZE" envDefault:"256"`

	// BufferSize is the streaming chunk size, e.g. "256KiB" or "1MB".
	// Env: FCRYPT_BUFFER_SIZE
	BufferSize string `env:"BUFFER_SIZE" envDefault:"256KiB"`

	// Suffix is appended to encrypted file names.
	// Env: FCRYPT_SUFFIX
	Suffix string `env:"SUFFIX" envDefault:".fcrypt"`

	// CompressionLevel is the DEFLATE level, -2 (Huffman only) to 9.
	// Env: FCRYPT_COMPRESSION_LEVEL
	CompressionLevel int `env:"COMPRESSION_LEVEL" envDefault:"-1"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom reads the configuration from environ instead of the process
// environment. Keys carry the FCRYPT_ prefix.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("%w: error getting env configs: %w", fcrypt.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field without building options.
func (c *Config) Validate() error {
	_, err := c.Options()
	return err
}

// Options converts the configuration into library options.
func (c *Config) Options() ([]fcrypt.Option, error) {
	var opts []fcrypt.Option

	switch c.KeySize {
	case 128:
		opts = append(opts, fcrypt.WithKeySize(fcrypt.KeySize128))
	case 256:
		opts = append(opts, fcrypt.WithKeySize(fcrypt.KeySize256))
	default:
		return nil, fmt.Errorf("%w: %sKEY_SIZE must be 128 or 256, got %d", fcrypt.ErrInvalidKeySize, Prefix, c.KeySize)
	}

	if c.Salt != "" {
		if len(c.Salt) < fcrypt.MinSaltSize {
			return nil, fmt.Errorf("%w: %sSALT needs at least %d bytes", fcrypt.ErrInvalidSalt, Prefix, fcrypt.MinSaltSize)
		}
		opts = append(opts, fcrypt.WithSalt([]byte(c.Salt)))
	}

	bufOpt, err := fcrypt.ParseBufferSize(c.BufferSize)
	if err != nil {
		return nil, fmt.Errorf("%sBUFFER_SIZE: %w", Prefix, err)
	}
	opts = append(opts, bufOpt)

	if c.CompressionLevel < -2 || c.CompressionLevel > 9 {
		return nil, fmt.Errorf("%w: %sCOMPRESSION_LEVEL must be between -2 and 9, got %d", fcrypt.ErrCompressionLevel, Prefix, c.CompressionLevel)
	}
	opts = append(opts, fcrypt.WithCompressionLevel(c.CompressionLevel))

	if !strings.HasPrefix(c.Suffix, ".") || len(c.Suffix) < 2 || strings.ContainsAny(c.Suffix, `/\`) {
		return nil, fmt.Errorf("%w: %sSUFFIX must look like \".ext\", got %q", fcrypt.ErrConfiguration, Prefix, c.Suffix)
	}

	return opts, nil
}
