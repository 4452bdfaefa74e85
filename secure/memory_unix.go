//go:build unix

/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package secure

import (
	"syscall"
)

// Lock pins key in RAM so it is never written to swap and returns the func
// that unpins it. mlock is often capped by RLIMIT_MEMLOCK; on error key is
// still usable, just not pinned, and release is a no-op.
func Lock(key []byte) (release func(), err error) {
	if len(key) == 0 {
		return func() {}, nil
	}
	if err := syscall.Mlock(key); err != nil {
		return func() {}, err
	}
	return func() { _ = syscall.Munlock(key) }, nil
}
