/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// format.go: Container layout for go-fcrypt
package core

import (
	"crypto/aes"
	"errors"
	"io"

	crypto "github.com/gitrgoliveira/go-fcrypt/internal/crypto"
)

const (
	// IVSize is the length of the initialization vector, one AES block.
	IVSize = aes.BlockSize
	// HeaderSize is the number of bytes preceding the payload.
	// File format: [16 bytes IV][CBC-PKCS7(raw DEFLATE(plaintext))...EOF]
	// There is no magic number, version, length prefix or integrity tag.
	HeaderSize = IVSize
)

// Format identifies an on-disk container layout.
type Format uint8

const (
	// FormatStreamIV is the random-IV header followed by the compressed and
	// encrypted payload (default, currently supported).
	FormatStreamIV Format = 1

	// FormatLegacyFixedIV is the older whole-file layout with a process-wide
	// IV and a 4-byte cipher type header. Reserved, not readable.
	FormatLegacyFixedIV Format = 2
)

// String returns the format name
func (f Format) String() string {
	switch f {
	case FormatStreamIV:
		return "stream-iv"
	case FormatLegacyFixedIV:
		return "legacy-fixed-iv"
	default:
		return "unknown"
	}
}

// IsSupported reports whether containers of this format can be produced and read.
func (f Format) IsSupported() bool {
	return f == FormatStreamIV
}

func writeHeader(w io.Writer, iv []byte) error {
	if _, err := w.Write(iv); err != nil {
		return crypto.WrapIO("write IV header", err)
	}
	return nil
}

// readHeader reads the IV. A container shorter than the header is reported as
// ErrTruncatedContainer rather than an I/O error.
func readHeader(r io.Reader) ([]byte, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(r, iv); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, crypto.ErrTruncatedContainer
		}
		return nil, crypto.WrapIO("read IV header", err)
	}
	return iv, nil
}
