/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package cli

import (
	"errors"
	"path/filepath"
	"strings"
)

// Mode selects the direction of a run.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeEncrypt
	ModeDecrypt
)

func (m Mode) String() string {
	switch m {
	case ModeEncrypt:
		return "encrypt"
	case ModeDecrypt:
		return "decrypt"
	default:
		return "unknown"
	}
}

var errNoInput = errors.New("input file path is required")

// ResolvePaths turns the user supplied paths into absolute input and output
// paths. An empty output defaults to the input.
//
// Encrypting appends suffix to the output unless it already ends with it.
// Decrypting appends suffix to the input unless it already ends with it, and
// strips it from the output.
func ResolvePaths(mode Mode, input, output, suffix string) (string, string, error) {
	if input == "" {
		return "", "", errNoInput
	}
	if output == "" {
		output = input
	}

	var err error
	if input, err = filepath.Abs(input); err != nil {
		return "", "", err
	}
	if output, err = filepath.Abs(output); err != nil {
		return "", "", err
	}

	switch mode {
	case ModeEncrypt:
		if !strings.HasSuffix(output, suffix) {
			output += suffix
		}
	case ModeDecrypt:
		if !strings.HasSuffix(input, suffix) {
			input += suffix
		}
		output = strings.TrimSuffix(output, suffix)
	default:
		return "", "", errors.New("one of --encrypt or --decrypt is required")
	}
	return input, output, nil
}
