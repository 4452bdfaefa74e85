/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// compress.go: Raw DEFLATE stages for go-fcrypt
package core

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	crypto "github.com/gitrgoliveira/go-fcrypt/internal/crypto"
)

// DefaultCompressionLevel is the DEFLATE level used unless overridden.
const DefaultCompressionLevel = flate.DefaultCompression

func validCompressionLevel(level int) bool {
	return level >= flate.HuffmanOnly && level <= flate.BestCompression
}

// compressStage is the raw DEFLATE compressor (no zlib/gzip framing; the
// container has no room for one).
type compressStage struct {
	fw   *flate.Writer
	done bool
}

func newCompressStage(dst io.Writer, level int) (*compressStage, error) {
	fw, err := flate.NewWriter(dst, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", crypto.ErrCompressionLevel, err)
	}
	return &compressStage{fw: fw}, nil
}

func (c *compressStage) Write(p []byte) (int, error) {
	if c.done {
		return 0, errFinalized
	}
	return c.fw.Write(p)
}

// Finalize writes the final DEFLATE block into the next stage.
func (c *compressStage) Finalize() error {
	if c.done {
		return nil
	}
	c.done = true
	return c.fw.Close()
}

// inflateSource decompresses the plaintext produced by a cbcReader.
type inflateSource struct {
	fr io.ReadCloser
}

func newInflateSource(src io.Reader) *inflateSource {
	return &inflateSource{fr: flate.NewReader(src)}
}

func (s *inflateSource) Read(p []byte) (int, error) {
	n, err := s.fr.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = inflateError(err)
	}
	return n, err
}

// Finalize releases the decompressor.
func (s *inflateSource) Finalize() error {
	return s.fr.Close()
}

// inflateError classifies a decompression failure. Errors coming from the
// cipher or the file keep their kind; malformed DEFLATE data means a wrong
// key or a damaged container.
func inflateError(err error) error {
	var corrupt flate.CorruptInputError
	switch {
	case errors.Is(err, crypto.ErrCipherFailure), errors.Is(err, crypto.ErrIO):
		return err
	case errors.As(err, &corrupt), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %w", crypto.ErrCorruptPayload, err)
	default:
		return crypto.WrapError("decompress", fmt.Errorf("%w: %w", crypto.ErrCorruptPayload, err))
	}
}
