/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package fcrypt_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gitrgoliveira/go-fcrypt"
)

const linkPassword = "linked"

func decryptAndCompare(t *testing.T, encPath string, want []byte) {
	t.Helper()
	decPath := filepath.Join(filepath.Dir(encPath), "roundtrip.out")
	if err := fcrypt.DecryptFile(context.Background(), encPath, decPath, linkPassword); err != nil {
		t.Fatalf("DecryptFile failed: %v", err)
	}
	got, err := os.ReadFile(decPath)
	if err != nil {
		t.Fatalf("read decrypted: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("decrypted %q, want %q", got, want)
	}
}

func TestEncryptFile_SymlinkedSource(t *testing.T) {
	dir := t.TempDir()
	plain := []byte("reached through a symlink")
	target := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(target, plain, 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "notes-link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	encPath := filepath.Join(dir, "notes.txt.fcrypt")
	if err := fcrypt.EncryptFile(context.Background(), link, encPath, linkPassword); err != nil {
		t.Fatalf("EncryptFile via symlink failed: %v", err)
	}
	decryptAndCompare(t, encPath, plain)
}

func TestDecryptFile_SymlinkedContainer(t *testing.T) {
	dir := t.TempDir()
	plain := []byte("container behind a link")
	src := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(src, plain, 0600); err != nil {
		t.Fatal(err)
	}
	encPath := filepath.Join(dir, "plain.txt.fcrypt")
	if err := fcrypt.EncryptFile(context.Background(), src, encPath, linkPassword); err != nil {
		t.Fatalf("EncryptFile failed: %v", err)
	}

	link := filepath.Join(dir, "current.fcrypt")
	if err := os.Symlink(encPath, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}
	decryptAndCompare(t, link, plain)
}

func TestEncryptFile_SymlinkedDestination(t *testing.T) {
	dir := t.TempDir()
	plain := []byte("written through a dangling link")
	src := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(src, plain, 0600); err != nil {
		t.Fatal(err)
	}

	// os.Create follows the link and creates the target.
	target := filepath.Join(dir, "real.fcrypt")
	link := filepath.Join(dir, "link.fcrypt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}
	if err := fcrypt.EncryptFile(context.Background(), src, link, linkPassword); err != nil {
		t.Fatalf("EncryptFile to symlink failed: %v", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("target not created: %v", err)
	}
	if info.Size() < fcrypt.IVSize+16 {
		t.Errorf("container too small: %d bytes", info.Size())
	}
	decryptAndCompare(t, target, plain)
}

func TestEncryptFile_NamedPipe(t *testing.T) {
	dir := t.TempDir()
	pipePath := filepath.Join(dir, "input.pipe")
	if err := mkfifo(pipePath); err != nil {
		t.Skipf("cannot create named pipe: %v", err)
	}

	plain := bytes.Repeat([]byte("fifo "), 1000)
	done := make(chan error, 1)
	go func() {
		w, err := os.OpenFile(pipePath, os.O_WRONLY, 0)
		if err != nil {
			done <- err
			return
		}
		defer w.Close()
		_, err = w.Write(plain)
		done <- err
	}()

	// A FIFO reports size 0, so the only progress report is the final 1.0.
	var reports []float64
	encPath := filepath.Join(dir, "input.fcrypt")
	err := fcrypt.EncryptFile(context.Background(), pipePath, encPath, linkPassword,
		fcrypt.WithProgress(func(f float64) { reports = append(reports, f) }))
	if err != nil {
		t.Fatalf("EncryptFile from pipe failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("pipe writer failed: %v", err)
	}
	if len(reports) != 1 || reports[0] != 1.0 {
		t.Errorf("progress reports = %v, want [1]", reports)
	}
	decryptAndCompare(t, encPath, plain)
}
