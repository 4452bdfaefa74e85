/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// key.go: Password-based key derivation and IV generation for go-fcrypt
package core

import (
	"crypto/rand"
	"crypto/sha1" // #nosec G505 -- PBKDF2-HMAC-SHA1 is fixed by the container format
	"fmt"
	"io"

	crypto "github.com/gitrgoliveira/go-fcrypt/internal/crypto"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeyIterations is the PBKDF2 iteration count. It is part of the format:
	// changing it makes every existing container unreadable.
	KeyIterations = 1000

	// KeySize128 selects AES-128.
	KeySize128 = 16
	// KeySize256 selects AES-256.
	KeySize256 = 32
	// DefaultKeySize is the derived key size (AES-256)
	DefaultKeySize = KeySize256

	// MinSaltSize is the shortest salt PBKDF2 is run with.
	MinSaltSize = 8

	// DefaultSaltText is the application salt embedded in the tool. Its UTF-8
	// bytes (not the base64-decoded value) are the salt.
	DefaultSaltText = "8HRd1vfMHOAKgIg5lS6A+uma6C10cjPhd0pDAN8WJYA="
)

// DefaultSalt returns a fresh copy of the embedded application salt.
func DefaultSalt() []byte {
	return []byte(DefaultSaltText)
}

func validKeySize(n int) bool {
	return n == KeySize128 || n == KeySize256
}

// DeriveKey derives a keyLen-byte key from password with PBKDF2-HMAC-SHA1 and
// KeyIterations rounds. The same inputs always give the same key, so no key
// material is stored in the container.
//
// Empty and weak passwords are NOT rejected here; that policy belongs to the
// caller. The caller must zero the returned key after use.
func DeriveKey(password string, salt []byte, keyLen int) ([]byte, error) {
	if len(salt) < MinSaltSize {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", crypto.ErrInvalidSalt, MinSaltSize, len(salt))
	}
	if !validKeySize(keyLen) {
		return nil, fmt.Errorf("%w: got %d", crypto.ErrInvalidKeySize, keyLen)
	}
	return deriveKey([]byte(password), salt, KeyIterations, keyLen), nil
}

func deriveKey(password, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key(password, salt, iterations, keyLen, sha1.New)
}

// GenerateIV reads a fresh IV from r, or from crypto/rand when r is nil.
func GenerateIV(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(r, iv); err != nil {
		return nil, crypto.WrapError("generate IV", err)
	}
	return iv, nil
}
