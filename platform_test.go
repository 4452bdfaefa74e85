/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// platform_test.go: Cross-platform behavior tests
package fcrypt_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gitrgoliveira/go-fcrypt"
	"github.com/gitrgoliveira/go-fcrypt/secure"
)

// TestCrossPlatform_MemoryLocking pins a derived key where the platform allows
// it (mlock on Unix, no-op on Windows) and zeroes it afterwards.
func TestCrossPlatform_MemoryLocking(t *testing.T) {
	key, err := fcrypt.DeriveKey("locked", fcrypt.DefaultSalt(), fcrypt.DefaultKeySize)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}

	release, err := secure.Lock(key)
	if err != nil {
		if runtime.GOOS == "windows" {
			t.Errorf("Lock failed on Windows (should be no-op): %v", err)
		} else {
			t.Logf("Lock failed on %s (may require elevated permissions): %v", runtime.GOOS, err)
		}
	}
	release()

	fcrypt.ZeroKey(key)
	for i, b := range key {
		if b != 0 {
			t.Fatalf("key byte %d not zeroed", i)
		}
	}
}

// TestCrossPlatform_FileEncryption tests that non-ASCII content and passwords
// survive a round trip on every platform
func TestCrossPlatform_FileEncryption(t *testing.T) {
	plaintext := []byte("Cross-platform test data: 日本語 ✓ Emoji 🔐")
	password := "пароль-密码-🔑"

	srcFile := filepath.Join(t.TempDir(), "plaintext.txt")
	encFile := filepath.Join(t.TempDir(), "plaintext.txt.fcrypt")
	dstFile := filepath.Join(t.TempDir(), "decrypted.txt")

	if err := os.WriteFile(srcFile, plaintext, 0600); err != nil {
		t.Fatalf("Failed to write plaintext: %v", err)
	}

	ctx := context.Background()
	if err := fcrypt.EncryptFile(ctx, srcFile, encFile, password); err != nil {
		t.Fatalf("EncryptFile failed on %s: %v", runtime.GOOS, err)
	}
	if err := fcrypt.DecryptFile(ctx, encFile, dstFile, password); err != nil {
		t.Fatalf("DecryptFile failed on %s: %v", runtime.GOOS, err)
	}

	decrypted, err := os.ReadFile(dstFile)
	if err != nil {
		t.Fatalf("Failed to read decrypted file: %v", err)
	}
	if !bytes.Equal(plaintext, decrypted) {
		t.Errorf("Decrypted data does not match original on %s", runtime.GOOS)
		t.Errorf("Original:  %q", plaintext)
		t.Errorf("Decrypted: %q", decrypted)
	}
}

// TestCrossPlatform_LargeFile tests encryption of a multi-chunk file on all platforms
func TestCrossPlatform_LargeFile(t *testing.T) {
	size := 5 * 1024 * 1024
	plaintext := make([]byte, size)
	for i := range plaintext {
		plaintext[i] = byte(i % 256)
	}

	srcFile := filepath.Join(t.TempDir(), "large_plaintext.bin")
	encFile := filepath.Join(t.TempDir(), "large_plaintext.bin.fcrypt")
	dstFile := filepath.Join(t.TempDir(), "large_decrypted.bin")

	if err := os.WriteFile(srcFile, plaintext, 0600); err != nil {
		t.Fatalf("Failed to write large plaintext: %v", err)
	}

	ctx := context.Background()
	progressCalls := 0
	err := fcrypt.EncryptFile(ctx, srcFile, encFile, "large", fcrypt.WithProgress(func(p float64) {
		progressCalls++
		t.Logf("Encryption progress on %s: %.1f%%", runtime.GOOS, p*100)
	}))
	if err != nil {
		t.Fatalf("EncryptFile failed on %s: %v", runtime.GOOS, err)
	}
	if progressCalls == 0 {
		t.Errorf("Progress callback was never called on %s", runtime.GOOS)
	}

	progressCalls = 0
	err = fcrypt.DecryptFile(ctx, encFile, dstFile, "large", fcrypt.WithProgress(func(p float64) {
		progressCalls++
	}))
	if err != nil {
		t.Fatalf("DecryptFile failed on %s: %v", runtime.GOOS, err)
	}
	if progressCalls == 0 {
		t.Errorf("Progress callback was never called on %s", runtime.GOOS)
	}

	decrypted, err := os.ReadFile(dstFile)
	if err != nil {
		t.Fatalf("Failed to read decrypted large file: %v", err)
	}
	if !bytes.Equal(plaintext, decrypted) {
		t.Errorf("Size mismatch: original=%d, decrypted=%d", len(plaintext), len(decrypted))
	}
}

// TestCrossPlatform_PathHandling tests nested directories and spaces in names
func TestCrossPlatform_PathHandling(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "sub dir 1", "subdir2")
	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatalf("Failed to create nested directories: %v", err)
	}

	plaintext := []byte("nested path test")
	srcFile := filepath.Join(nestedDir, "my file.txt")
	encFile := srcFile + ".fcrypt"
	dstFile := filepath.Join(nestedDir, "my file (decrypted).txt")

	if err := os.WriteFile(srcFile, plaintext, 0600); err != nil {
		t.Fatalf("Failed to write to nested path: %v", err)
	}

	ctx := context.Background()
	if err := fcrypt.EncryptFile(ctx, srcFile, encFile, "pw"); err != nil {
		t.Fatalf("EncryptFile failed with nested path on %s: %v", runtime.GOOS, err)
	}
	if err := fcrypt.DecryptFile(ctx, encFile, dstFile, "pw"); err != nil {
		t.Fatalf("DecryptFile failed with nested path on %s: %v", runtime.GOOS, err)
	}

	decrypted, err := os.ReadFile(dstFile)
	if err != nil {
		t.Fatalf("Failed to read decrypted file from nested path: %v", err)
	}
	if !bytes.Equal(plaintext, decrypted) {
		t.Errorf("Nested path encryption/decryption failed on %s", runtime.GOOS)
	}
}

// TestCrossPlatform_ConcurrentOperations tests concurrent encryption on all platforms
func TestCrossPlatform_ConcurrentOperations(t *testing.T) {
	const numFiles = 5
	ctx := context.Background()
	baseDir := t.TempDir()
	errCh := make(chan error, numFiles)

	for i := 0; i < numFiles; i++ {
		go func(idx int) {
			plaintext := []byte(fmt.Sprintf("concurrent test data %d", idx))
			password := fmt.Sprintf("password-%d", idx)
			srcFile := filepath.Join(baseDir, fmt.Sprintf("concurrent_%d.txt", idx))
			encFile := srcFile + ".fcrypt"
			dstFile := filepath.Join(baseDir, fmt.Sprintf("concurrent_%d_dec.txt", idx))

			if err := os.WriteFile(srcFile, plaintext, 0600); err != nil {
				errCh <- err
				return
			}
			if err := fcrypt.EncryptFile(ctx, srcFile, encFile, password); err != nil {
				errCh <- err
				return
			}
			if err := fcrypt.DecryptFile(ctx, encFile, dstFile, password); err != nil {
				errCh <- err
				return
			}
			decrypted, err := os.ReadFile(dstFile)
			if err != nil {
				errCh <- err
				return
			}
			if !bytes.Equal(plaintext, decrypted) {
				errCh <- fmt.Errorf("file %d: content mismatch", idx)
				return
			}
			errCh <- nil
		}(i)
	}

	for i := 0; i < numFiles; i++ {
		if err := <-errCh; err != nil {
			t.Errorf("Concurrent operation failed on %s: %v", runtime.GOOS, err)
		}
	}
}
