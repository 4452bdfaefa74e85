/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package crypto

import (
	"sync"

	"github.com/gitrgoliveira/go-fcrypt/secure"
)

// SecureBuffer holds a derived key for the duration of a single
// encrypt or decrypt call.
type SecureBuffer struct {
	mu     sync.Mutex
	buf    []byte
	zeroed bool
	unlock func()
}

// NewSecureBuffer takes ownership of key: the bytes are moved into a locked
// (best effort) buffer and the caller's slice is zeroed.
func NewSecureBuffer(key []byte) *SecureBuffer {
	buf := make([]byte, len(key))
	copy(buf, key)
	secure.Zero(key)

	// an unpinned key is still usable
	release, _ := secure.Lock(buf)
	return &SecureBuffer{buf: buf, unlock: release}
}

// Data returns the key bytes, or nil after Destroy. The slice is only valid
// until Destroy.
func (s *SecureBuffer) Data() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf
}

// Len is the key length in bytes.
func (s *SecureBuffer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Destroy zeroes the key and releases the memory lock. Safe to call twice.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.zeroed {
		return
	}
	secure.Zero(s.buf)
	s.zeroed = true
	s.unlock()
	s.buf = nil
}
