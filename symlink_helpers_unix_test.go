//go:build unix

/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package fcrypt_test

import "syscall"

func mkfifo(path string) error {
	return syscall.Mkfifo(path, 0600)
}
