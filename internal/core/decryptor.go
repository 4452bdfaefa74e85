/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// decryptor.go: Streaming decrypt-then-decompress for go-fcrypt
package core

import (
	"context"
	"io"
	"os"
	"sync"

	crypto "github.com/gitrgoliveira/go-fcrypt/internal/crypto"
)

// Decryptor reads containers written by an Encryptor with the same salt and
// key size.
type Decryptor struct {
	cfg        *Config
	bufferPool *sync.Pool
}

func NewDecryptor(opts ...Option) (*Decryptor, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Decryptor{cfg: cfg, bufferPool: newBufferPool(cfg.BufferSize)}, nil
}

// DecryptFile decrypts srcPath into dstPath, creating or truncating dstPath.
// A wrong password is only detected once the payload fails to decompress or
// its padding is checked, so dstPath may already hold garbage when an
// ErrCipherFailure is returned.
func (d *Decryptor) DecryptFile(ctx context.Context, srcPath, dstPath, password string) (err error) {
	srcFile, err := os.Open(srcPath) // #nosec G304 -- File path provided by caller, library purpose is file decryption
	if err != nil {
		return crypto.NewEncryptionError("decrypt", srcPath, crypto.WrapIO("open source file", err))
	}
	defer srcFile.Close()

	stat, err := srcFile.Stat()
	if err != nil {
		return crypto.NewEncryptionError("decrypt", srcPath, crypto.WrapIO("stat source file", err))
	}

	dstFile, err := os.Create(dstPath) // #nosec G304 -- File path provided by caller, library purpose is file decryption
	if err != nil {
		return crypto.NewEncryptionError("decrypt", dstPath, crypto.WrapIO("create destination file", err))
	}
	defer func() {
		if cerr := dstFile.Close(); cerr != nil && err == nil {
			err = crypto.NewEncryptionError("decrypt", dstPath, crypto.WrapIO("close destination file", cerr))
		}
	}()

	if err := d.DecryptStream(ctx, srcFile, dstFile, password, stat.Size()); err != nil {
		return crypto.NewEncryptionError("decrypt", srcPath, err)
	}
	return nil
}

// DecryptStream reads the IV header from src, then decrypts and decompresses
// the rest of src into dst. If sizeHint > 0 it is the container size, used
// for progress reporting only.
func (d *Decryptor) DecryptStream(ctx context.Context, src io.Reader, dst io.Writer, password string, sizeHint ...int64) error {
	var total int64
	if len(sizeHint) > 0 {
		total = sizeHint[0]
	}
	in := newProgressReader(src, total, d.cfg.Progress)

	iv, err := readHeader(in)
	if err != nil {
		return err
	}

	key, err := DeriveKey(password, d.cfg.Salt, d.cfg.KeySize)
	if err != nil {
		return err
	}
	keyBuf := crypto.NewSecureBuffer(key)
	defer keyBuf.Destroy()

	params, err := NewCipherParams(keyBuf.Data(), iv)
	if err != nil {
		return err
	}

	bufPtr := d.bufferPool.Get().(*[]byte)
	defer d.bufferPool.Put(bufPtr)
	buf := *bufPtr

	sink := newSinkStage(dst, len(buf))
	p, err := newDecryptPipeline(params, in, sink, buf)
	if err != nil {
		return err
	}
	if err := p.Run(ctx); err != nil {
		return err
	}
	if err := p.Finalize(); err != nil {
		return err
	}

	if d.cfg.Progress != nil {
		d.cfg.Progress(1.0)
	}
	return nil
}
