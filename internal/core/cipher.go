/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// cipher.go: Streaming AES-CBC with PKCS#7 padding for go-fcrypt
package core

import (
	"bytes"
	"crypto/cipher"
	"crypto/subtle"
	"errors"
	"io"

	crypto "github.com/gitrgoliveira/go-fcrypt/internal/crypto"
)

var errFinalized = errors.New("stage already finalized")

// pkcs7Pad returns data padded to a multiple of blockSize. Block-aligned
// input gains one full block of padding.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

// pkcs7PadLen validates the padding of the final plaintext block and returns
// its length.
func pkcs7PadLen(last []byte) (int, error) {
	size := len(last)
	if size == 0 {
		return 0, crypto.ErrPaddingInvalid
	}
	n := int(last[size-1])
	if n == 0 || n > size {
		return 0, crypto.ErrPaddingInvalid
	}
	want := bytes.Repeat([]byte{byte(n)}, n)
	if subtle.ConstantTimeCompare(last[size-n:], want) != 1 {
		return 0, crypto.ErrPaddingInvalid
	}
	return n, nil
}

// cbcWriter encrypts everything written to it and forwards the ciphertext to
// dst. Bytes that do not fill a block are held until the next Write or until
// Finalize pads them.
type cbcWriter struct {
	dst       io.Writer
	mode      cipher.BlockMode
	blockSize int
	pending   []byte
	out       []byte
	done      bool
}

func newCBCWriter(p CipherParams, dst io.Writer) (*cbcWriter, error) {
	block, err := p.block()
	if err != nil {
		return nil, err
	}
	return &cbcWriter{
		dst:       dst,
		mode:      cipher.NewCBCEncrypter(block, p.IV),
		blockSize: p.BlockSize,
		pending:   make([]byte, 0, p.BlockSize),
	}, nil
}

func (w *cbcWriter) Write(p []byte) (int, error) {
	if w.done {
		return 0, errFinalized
	}
	n := len(p)

	if len(w.pending) > 0 {
		need := w.blockSize - len(w.pending)
		if len(p) < need {
			w.pending = append(w.pending, p...)
			return n, nil
		}
		w.pending = append(w.pending, p[:need]...)
		p = p[need:]
		if err := w.emit(w.pending); err != nil {
			return 0, err
		}
		w.pending = w.pending[:0]
	}

	full := len(p) - len(p)%w.blockSize
	if full > 0 {
		if err := w.emit(p[:full]); err != nil {
			return 0, err
		}
	}
	w.pending = append(w.pending, p[full:]...)
	return n, nil
}

func (w *cbcWriter) emit(plain []byte) error {
	if cap(w.out) < len(plain) {
		w.out = make([]byte, len(plain))
	}
	out := w.out[:len(plain)]
	w.mode.CryptBlocks(out, plain)
	if _, err := w.dst.Write(out); err != nil {
		return crypto.WrapIO("write ciphertext", err)
	}
	return nil
}

// Finalize pads the held bytes and writes the last ciphertext block(s).
func (w *cbcWriter) Finalize() error {
	if w.done {
		return nil
	}
	w.done = true
	padded := pkcs7Pad(w.pending, w.blockSize)
	err := w.emit(padded)
	clear(padded)
	return err
}

// cbcReader decrypts ciphertext read from src. The last decrypted block is
// always held back until src reports EOF, because only then is it known to
// carry the padding.
type cbcReader struct {
	src       io.Reader
	mode      cipher.BlockMode
	blockSize int
	buf       []byte // read buffer
	raw       []byte // ciphertext not yet decrypted (less than a block, or a whole read)
	held      []byte // last decrypted block
	plain     []byte // plaintext ready for the caller
	off       int
	eof       bool
	err       error
}

func newCBCReader(p CipherParams, src io.Reader, bufSize int) (*cbcReader, error) {
	block, err := p.block()
	if err != nil {
		return nil, err
	}
	if bufSize < p.BlockSize {
		bufSize = p.BlockSize
	}
	return &cbcReader{
		src:       src,
		mode:      cipher.NewCBCDecrypter(block, p.IV),
		blockSize: p.BlockSize,
		buf:       make([]byte, bufSize),
		held:      make([]byte, 0, p.BlockSize),
	}, nil
}

func (r *cbcReader) Read(p []byte) (int, error) {
	for r.off >= len(r.plain) {
		if r.eof {
			return 0, io.EOF
		}
		if r.err != nil {
			return 0, r.err
		}
		r.fill()
	}
	n := copy(p, r.plain[r.off:])
	r.off += n
	return n, nil
}

// ReadByte lets the decompressor read through cbcReader directly instead of
// wrapping it in its own buffer, so it never consumes past the compressed stream.
func (r *cbcReader) ReadByte() (byte, error) {
	for r.off >= len(r.plain) {
		if r.eof {
			return 0, io.EOF
		}
		if r.err != nil {
			return 0, r.err
		}
		r.fill()
	}
	b := r.plain[r.off]
	r.off++
	return b, nil
}

// fill reads one chunk of ciphertext and makes the plaintext it releases
// available. It sets r.eof or r.err when the stream ends.
func (r *cbcReader) fill() {
	n, err := r.src.Read(r.buf)
	r.raw = append(r.raw, r.buf[:n]...)

	switch {
	case errors.Is(err, io.EOF):
		r.finish()
		return
	case err != nil:
		r.err = crypto.WrapIO("read ciphertext", err)
		return
	}

	complete := len(r.raw) - len(r.raw)%r.blockSize
	if complete == 0 {
		return
	}
	r.decrypt(r.raw[:complete])
	r.raw = append(r.raw[:0], r.raw[complete:]...)

	last := len(r.plain) - r.blockSize
	r.held = append(r.held[:0], r.plain[last:]...)
	r.plain = r.plain[:last]
}

// decrypt sets r.plain to the held block followed by the decryption of ct.
func (r *cbcReader) decrypt(ct []byte) {
	r.plain = append(r.plain[:0], r.held...)
	start := len(r.plain)
	if cap(r.plain) < start+len(ct) {
		grown := make([]byte, start, start+len(ct))
		copy(grown, r.plain)
		r.plain = grown
	}
	r.plain = r.plain[:start+len(ct)]
	r.mode.CryptBlocks(r.plain[start:], ct)
	r.held = r.held[:0]
	r.off = 0
}

func (r *cbcReader) finish() {
	if len(r.raw)%r.blockSize != 0 {
		r.err = crypto.ErrCiphertextLength
		return
	}
	r.decrypt(r.raw)
	r.raw = r.raw[:0]
	if len(r.plain) == 0 {
		r.err = crypto.ErrCiphertextLength
		return
	}
	padLen, err := pkcs7PadLen(r.plain[len(r.plain)-r.blockSize:])
	if err != nil {
		r.plain = r.plain[:0]
		r.err = err
		return
	}
	r.plain = r.plain[:len(r.plain)-padLen]
	r.eof = true
}

// Finalize consumes any ciphertext left after the compressed stream so the
// padding is always checked. Leftover plaintext is ErrTrailingData.
func (r *cbcReader) Finalize() error {
	extra, err := io.Copy(io.Discard, r)
	if err != nil {
		return err
	}
	if extra > 0 {
		return crypto.ErrTrailingData
	}
	return nil
}
