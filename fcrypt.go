/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package fcrypt provides password-based, streaming file encryption and
// decryption for Go.
//
// Every file is compressed with raw DEFLATE and then encrypted with AES-CBC
// (PKCS#7 padding) under a key derived from a password with PBKDF2-HMAC-SHA1.
// The resulting container is the 16-byte random IV followed by the ciphertext:
//
//	+----------+---------------------------------------------+
//	| IV (16)  | AES-CBC( DEFLATE(plaintext) || PKCS#7 pad ) |
//	+----------+---------------------------------------------+
//
// Files are processed in fixed-size chunks (256 KiB by default) so memory use
// does not depend on file size.
//
// # Basic Usage
//
//	ctx := context.Background()
//
//	// Encrypt a file
//	err := fcrypt.EncryptFile(ctx, "report.pdf", "report.pdf.fcrypt", "correct horse")
//
//	// Decrypt the file
//	err = fcrypt.DecryptFile(ctx, "report.pdf.fcrypt", "report.pdf", "correct horse")
//
// # Stream Encryption
//
// Encrypt data from any io.Reader to any io.Writer:
//
//	err := fcrypt.EncryptStream(ctx, input, output, password)
//
// # Errors
//
// Every failure matches exactly one of ErrIO, ErrCipherFailure,
// ErrConfiguration or ErrContextCanceled with errors.Is. A wrong password and
// a corrupted file both surface as ErrCipherFailure.
//
// # Security Considerations
//
// The container carries no authentication tag. PKCS#7 padding and the
// DEFLATE stream structure catch most wrong passwords and most damage, but
// they are not an integrity check: a modified container can decrypt to
// modified plaintext. Record a checksum (see Checksum) out of band when
// integrity matters.
//
// The salt is a fixed application constant, so equal passwords always yield
// equal keys. Use WithSalt to give a deployment its own salt; the same salt
// is required to decrypt.
package fcrypt

import (
	"context"
	"io"

	"github.com/gitrgoliveira/go-fcrypt/internal/core"
	"github.com/gitrgoliveira/go-fcrypt/internal/crypto"
	"github.com/gitrgoliveira/go-fcrypt/secure"
)

// Option defines functional options for encryption/decryption (re-exported from internal/core).
type Option = core.Option

// Format identifies a container layout.
type Format = core.Format

// Container formats.
const (
	FormatStreamIV      = core.FormatStreamIV
	FormatLegacyFixedIV = core.FormatLegacyFixedIV
)

var (
	// WithBufferSize sets the chunk buffer size for streaming operations.
	WithBufferSize = core.WithBufferSize
	// ParseBufferSize is WithBufferSize for sizes like "256KiB".
	ParseBufferSize = core.ParseBufferSize
	// WithProgress sets a progress callback.
	WithProgress = core.WithProgress
	// WithKeySize selects AES-128 (KeySize128) or AES-256 (KeySize256).
	WithKeySize = core.WithKeySize
	// WithSalt replaces the embedded application salt.
	WithSalt = core.WithSalt
	// WithCompressionLevel sets the DEFLATE level.
	WithCompressionLevel = core.WithCompressionLevel
	// WithRandom sets the IV source. Leave unset outside tests.
	WithRandom = core.WithRandom
	// WithFormat selects the container format.
	WithFormat = core.WithFormat
)

// Checksum helpers.
var (
	Checksum       = core.Checksum
	VerifyChecksum = core.VerifyChecksum
)

// Error kinds and the specific failures they group (re-exported from internal/crypto).
var (
	ErrIO              = crypto.ErrIO
	ErrCipherFailure   = crypto.ErrCipherFailure
	ErrConfiguration   = crypto.ErrConfiguration
	ErrContextCanceled = crypto.ErrContextCanceled

	ErrPaddingInvalid     = crypto.ErrPaddingInvalid
	ErrCiphertextLength   = crypto.ErrCiphertextLength
	ErrTruncatedContainer = crypto.ErrTruncatedContainer
	ErrCorruptPayload     = crypto.ErrCorruptPayload
	ErrTrailingData       = crypto.ErrTrailingData

	ErrInvalidKeySize    = crypto.ErrInvalidKeySize
	ErrInvalidSalt       = crypto.ErrInvalidSalt
	ErrBufferSize        = crypto.ErrBufferSize
	ErrCompressionLevel  = crypto.ErrCompressionLevel
	ErrUnsupportedFormat = crypto.ErrUnsupportedFormat
)

// EncryptionError attaches the operation and file path to a failure.
type EncryptionError = crypto.EncryptionError

// SanitizeError maps err to a message that is safe to show to end users.
var SanitizeError = crypto.SanitizeError

// EncryptFile compresses and encrypts srcPath into dstPath.
func EncryptFile(ctx context.Context, srcPath, dstPath, password string, opts ...Option) error {
	enc, err := core.NewEncryptor(opts...)
	if err != nil {
		return err
	}
	return enc.EncryptFile(ctx, srcPath, dstPath, password)
}

// DecryptFile decrypts and decompresses srcPath into dstPath.
func DecryptFile(ctx context.Context, srcPath, dstPath, password string, opts ...Option) error {
	dec, err := core.NewDecryptor(opts...)
	if err != nil {
		return err
	}
	return dec.DecryptFile(ctx, srcPath, dstPath, password)
}

// EncryptStream writes the container for src to dst.
func EncryptStream(ctx context.Context, src io.Reader, dst io.Writer, password string, opts ...Option) error {
	enc, err := core.NewEncryptor(opts...)
	if err != nil {
		return err
	}
	return enc.EncryptStream(ctx, src, dst, password)
}

// DecryptStream reads a container from src and writes the plaintext to dst.
func DecryptStream(ctx context.Context, src io.Reader, dst io.Writer, password string, opts ...Option) error {
	dec, err := core.NewDecryptor(opts...)
	if err != nil {
		return err
	}
	return dec.DecryptStream(ctx, src, dst, password)
}

// Re-export key derivation and format constants from internal/core
const (
	KeyIterations     = core.KeyIterations
	KeySize128        = core.KeySize128
	KeySize256        = core.KeySize256
	DefaultKeySize    = core.DefaultKeySize
	MinSaltSize       = core.MinSaltSize
	DefaultSaltText   = core.DefaultSaltText
	IVSize            = core.IVSize
	DefaultBufferSize = core.DefaultBufferSize
)

// ZeroKey securely zeroes a key slice. Use defer ZeroKey(key) after DeriveKey.
var ZeroKey = secure.Zero

// DeriveKey derives a key from password with PBKDF2-HMAC-SHA1 and
// KeyIterations rounds.
func DeriveKey(password string, salt []byte, keyLen int) ([]byte, error) {
	return core.DeriveKey(password, salt, keyLen)
}

// DefaultSalt returns a copy of the embedded application salt.
func DefaultSalt() []byte {
	return core.DefaultSalt()
}
