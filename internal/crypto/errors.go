/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package crypto

import (
	"errors"
	"fmt"
	"os"
)

// Error kinds. Every error returned by the library matches exactly one of
// ErrIO, ErrCipherFailure, ErrConfiguration or ErrContextCanceled via errors.Is.
var (
	ErrIO              = errors.New("i/o failure")
	ErrCipherFailure   = errors.New("decryption failed")
	ErrConfiguration   = errors.New("invalid configuration")
	ErrContextCanceled = errors.New("context canceled")
)

// Cipher failures. A wrong password and a corrupted container are not
// distinguishable: both surface as one of these.
var (
	// ErrPaddingInvalid is reported when the final block does not carry a valid
	// PKCS#7 pattern. It is the only integrity signal of the format and a wrong
	// key passes it roughly once in 256 attempts.
	ErrPaddingInvalid     = fmt.Errorf("%w: invalid PKCS#7 padding", ErrCipherFailure)
	ErrCiphertextLength   = fmt.Errorf("%w: ciphertext is not a positive multiple of the block size", ErrCipherFailure)
	ErrTruncatedContainer = fmt.Errorf("%w: container shorter than its IV header", ErrCipherFailure)
	ErrCorruptPayload     = fmt.Errorf("%w: compressed payload is corrupt", ErrCipherFailure)
	ErrTrailingData       = fmt.Errorf("%w: unexpected data after compressed payload", ErrCipherFailure)
)

// Configuration failures.
var (
	ErrInvalidKeySize    = fmt.Errorf("%w: key size must be 16 or 32 bytes", ErrConfiguration)
	ErrInvalidSalt       = fmt.Errorf("%w: salt too short", ErrConfiguration)
	ErrBufferSize        = fmt.Errorf("%w: invalid buffer size", ErrConfiguration)
	ErrCompressionLevel  = fmt.Errorf("%w: invalid compression level", ErrConfiguration)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported container format", ErrConfiguration)
)

// SanitizeError removes sensitive details for external consumption
func SanitizeError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrCipherFailure):
		return errors.New("decryption failed: wrong password or corrupted file")
	case errors.Is(err, ErrConfiguration):
		return errors.New("invalid configuration")
	case errors.Is(err, ErrContextCanceled):
		return errors.New("operation canceled")
	case errors.Is(err, os.ErrPermission):
		return errors.New("insufficient permissions")
	case errors.Is(err, os.ErrNotExist):
		return errors.New("file not found")
	case errors.Is(err, ErrIO):
		return errors.New("file i/o failed")
	default:
		return errors.New("operation failed")
	}
}

// EncryptionError attaches the operation and file path to a failure.
type EncryptionError struct {
	Op   string // "encrypt" or "decrypt"
	Path string
	Err  error
}

func (e *EncryptionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *EncryptionError) Unwrap() error {
	return e.Err
}

// NewEncryptionError creates a new EncryptionError
func NewEncryptionError(op, path string, err error) *EncryptionError {
	return &EncryptionError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// WrapError adds context to an error
func WrapError(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// WrapIO adds context to an error and marks it as ErrIO, keeping the
// underlying cause (e.g. *os.PathError) reachable.
func WrapIO(context string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrIO) {
		return WrapError(context, err)
	}
	return fmt.Errorf("%s: %w: %w", context, ErrIO, err)
}
