/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	crypto "github.com/gitrgoliveira/go-fcrypt/internal/crypto"
	"github.com/gitrgoliveira/go-fcrypt/secure"
)

// Checksum returns the hex SHA-256 of the file at path. The container has no
// integrity tag; callers that need one record this value out of band.
func Checksum(path string) (string, error) {
	// #nosec G304 -- file path provided by caller, library is designed for file operations
	f, err := os.Open(path)
	if err != nil {
		return "", crypto.WrapIO("open file for checksum", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, bufio.NewReaderSize(f, DefaultBufferSize)); err != nil {
		return "", crypto.WrapIO("read file for checksum", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum reports whether the file at path hashes to want (hex SHA-256).
func VerifyChecksum(path, want string) (bool, error) {
	wantSum, err := hex.DecodeString(want)
	if err != nil {
		return false, fmt.Errorf("invalid hex checksum: %w", err)
	}
	got, err := Checksum(path)
	if err != nil {
		return false, err
	}
	gotSum, _ := hex.DecodeString(got)
	return secure.Equal(gotSum, wantSum), nil
}
