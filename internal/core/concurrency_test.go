/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// An Encryptor or Decryptor holds no per-call state, so one instance can
// serve many goroutines.
func TestEncryptor_ConcurrentUse(t *testing.T) {
	enc, err := NewEncryptor()
	if err != nil {
		t.Fatalf("NewEncryptor failed: %v", err)
	}
	dec, err := NewDecryptor()
	if err != nil {
		t.Fatalf("NewDecryptor failed: %v", err)
	}

	dir := t.TempDir()
	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data := bytes.Repeat([]byte{byte(i)}, 10000+i)
			src := filepath.Join(dir, fmt.Sprintf("plain-%d", i))
			encPath := src + ".fcrypt"
			out := src + ".out"
			password := fmt.Sprintf("password-%d", i)

			if err := os.WriteFile(src, data, 0600); err != nil {
				errs <- err
				return
			}
			if err := enc.EncryptFile(context.Background(), src, encPath, password); err != nil {
				errs <- err
				return
			}
			if err := dec.DecryptFile(context.Background(), encPath, out, password); err != nil {
				errs <- err
				return
			}
			got, err := os.ReadFile(out)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got, data) {
				errs <- fmt.Errorf("goroutine %d: round trip mismatch", i)
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestBufferPool_Concurrency(t *testing.T) {
	enc, err := NewEncryptor()
	if err != nil {
		t.Fatalf("NewEncryptor failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := enc.bufferPool.Get().(*[]byte)
			if len(*buf) != DefaultBufferSize {
				t.Errorf("pooled buffer has %d bytes", len(*buf))
			}
			(*buf)[0] = 0xFF
			enc.bufferPool.Put(buf)
		}()
	}
	wg.Wait()
}
