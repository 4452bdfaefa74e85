/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// encryptor.go: Streaming compress-then-encrypt for go-fcrypt
package core

import (
	"context"
	"io"
	"os"
	"sync"

	crypto "github.com/gitrgoliveira/go-fcrypt/internal/crypto"
)

// Encryptor writes containers. It holds configuration only: the key is
// derived from the password on every call and destroyed when the call returns.
type Encryptor struct {
	cfg        *Config
	bufferPool *sync.Pool
}

func NewEncryptor(opts ...Option) (*Encryptor, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Encryptor{cfg: cfg, bufferPool: newBufferPool(cfg.BufferSize)}, nil
}

func newBufferPool(size int) *sync.Pool {
	return &sync.Pool{
		New: func() interface{} {
			buf := make([]byte, size)
			return &buf
		},
	}
}

// EncryptFile encrypts srcPath into dstPath, creating or truncating dstPath.
// On failure a partially written dstPath is left in place; removing it is up
// to the caller.
func (e *Encryptor) EncryptFile(ctx context.Context, srcPath, dstPath, password string) (err error) {
	srcFile, err := os.Open(srcPath) // #nosec G304 -- File path provided by caller, library purpose is file encryption
	if err != nil {
		return crypto.NewEncryptionError("encrypt", srcPath, crypto.WrapIO("open source file", err))
	}
	defer srcFile.Close()

	stat, err := srcFile.Stat()
	if err != nil {
		return crypto.NewEncryptionError("encrypt", srcPath, crypto.WrapIO("stat source file", err))
	}

	dstFile, err := os.Create(dstPath) // #nosec G304 -- File path provided by caller, library purpose is file encryption
	if err != nil {
		return crypto.NewEncryptionError("encrypt", dstPath, crypto.WrapIO("create destination file", err))
	}
	defer func() {
		if cerr := dstFile.Close(); cerr != nil && err == nil {
			err = crypto.NewEncryptionError("encrypt", dstPath, crypto.WrapIO("close destination file", cerr))
		}
	}()

	if err := e.EncryptStream(ctx, srcFile, dstFile, password, stat.Size()); err != nil {
		return crypto.NewEncryptionError("encrypt", srcPath, err)
	}
	return nil
}

// EncryptStream writes the IV header followed by the compressed and encrypted
// contents of src to dst. If sizeHint > 0, it is used for progress reporting only.
func (e *Encryptor) EncryptStream(ctx context.Context, src io.Reader, dst io.Writer, password string, sizeHint ...int64) error {
	key, err := DeriveKey(password, e.cfg.Salt, e.cfg.KeySize)
	if err != nil {
		return err
	}
	keyBuf := crypto.NewSecureBuffer(key)
	defer keyBuf.Destroy()

	iv, err := GenerateIV(e.cfg.Random)
	if err != nil {
		return err
	}

	params, err := NewCipherParams(keyBuf.Data(), iv)
	if err != nil {
		return err
	}

	bufPtr := e.bufferPool.Get().(*[]byte)
	defer e.bufferPool.Put(bufPtr)
	buf := *bufPtr

	sink := newSinkStage(dst, len(buf))
	if err := writeHeader(sink, iv); err != nil {
		return err
	}

	var total int64
	if len(sizeHint) > 0 {
		total = sizeHint[0]
	}
	in := newProgressReader(src, total, e.cfg.Progress)

	p, err := newEncryptPipeline(params, readErrorsAsIO{in}, sink, e.cfg.CompressionLevel, buf)
	if err != nil {
		return err
	}
	if err := p.Run(ctx); err != nil {
		return err
	}
	if err := p.Finalize(); err != nil {
		return err
	}

	if e.cfg.Progress != nil {
		e.cfg.Progress(1.0)
	}
	return nil
}

// readErrorsAsIO marks failures reading the plaintext source as ErrIO.
type readErrorsAsIO struct {
	r io.Reader
}

func (r readErrorsAsIO) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF {
		err = crypto.WrapIO("read source", err)
	}
	return n, err
}
