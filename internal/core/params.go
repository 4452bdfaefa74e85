/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	crypto "github.com/gitrgoliveira/go-fcrypt/internal/crypto"
)

// Mode is a block cipher mode of operation.
type Mode uint8

// Padding is a block padding scheme.
type Padding uint8

const (
	ModeCBC Mode = 1

	PaddingPKCS7 Padding = 1
)

func (m Mode) String() string {
	if m == ModeCBC {
		return "CBC"
	}
	return "Unknown"
}

func (p Padding) String() string {
	if p == PaddingPKCS7 {
		return "PKCS7"
	}
	return "Unknown"
}

// CipherParams bundles everything the cipher codec needs for one operation.
// It is built per call and never persisted; the container only carries the IV.
type CipherParams struct {
	KeySize   int // bytes
	BlockSize int // bytes
	Mode      Mode
	Padding   Padding
	Key       []byte
	IV        []byte
}

// NewCipherParams returns AES-CBC/PKCS7 parameters for key and iv.
func NewCipherParams(key, iv []byte) (CipherParams, error) {
	p := CipherParams{
		KeySize:   len(key),
		BlockSize: aes.BlockSize,
		Mode:      ModeCBC,
		Padding:   PaddingPKCS7,
		Key:       key,
		IV:        iv,
	}
	return p, p.Validate()
}

// Validate checks the parameters are internally consistent.
func (p CipherParams) Validate() error {
	if !validKeySize(p.KeySize) || len(p.Key) != p.KeySize {
		return crypto.ErrInvalidKeySize
	}
	if p.BlockSize != aes.BlockSize {
		return fmt.Errorf("%w: block size must be %d bytes, got %d", crypto.ErrConfiguration, aes.BlockSize, p.BlockSize)
	}
	if len(p.IV) != p.BlockSize {
		return fmt.Errorf("%w: IV must be %d bytes, got %d", crypto.ErrConfiguration, p.BlockSize, len(p.IV))
	}
	if p.Mode != ModeCBC || p.Padding != PaddingPKCS7 {
		return fmt.Errorf("%w: unsupported cipher %s/%s", crypto.ErrConfiguration, p.Mode, p.Padding)
	}
	return nil
}

func (p CipherParams) block() (cipher.Block, error) {
	block, err := aes.NewCipher(p.Key)
	if err != nil {
		return nil, crypto.WrapError("create cipher", fmt.Errorf("%w: %w", crypto.ErrConfiguration, err))
	}
	return block, nil
}
