/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package cli implements the fcrypt command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gitrgoliveira/go-fcrypt"
	"github.com/gitrgoliveira/go-fcrypt/internal/config"
)

// ErrAborted is returned when the user declines to overwrite the output.
var ErrAborted = errors.New("aborted by user")

type flags struct {
	encrypt  bool
	decrypt  bool
	input    string
	output   string
	password string
	yes      bool
	checksum bool
	verbose  bool
}

// NewRootCommand creates the fcrypt command.
func NewRootCommand(cfg *config.Config, version string, prompter Prompter) *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:   "fcrypt -e|-d -i INPUT [-o OUTPUT] [-p PASSWORD]",
		Short: "Password-based file encryption utility",
		Long: `Compresses and encrypts a file with a password, or reverses it.

Encrypt: the output defaults to INPUT` + cfg.Suffix + `.
Decrypt: ` + cfg.Suffix + ` is appended to INPUT if missing; the output defaults to
INPUT without ` + cfg.Suffix + `.

The password is prompted for when -p is not given.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, cfg, prompter, f)
		},
	}

	root.Flags().BoolVarP(&f.encrypt, "encrypt", "e", false, "Encrypt INPUT")
	root.Flags().BoolVarP(&f.decrypt, "decrypt", "d", false, "Decrypt INPUT")
	root.Flags().StringVarP(&f.input, "input", "i", "", "Input file path")
	root.Flags().StringVarP(&f.output, "output", "o", "", "Output file path")
	root.Flags().StringVarP(&f.password, "password", "p", "", "Password (prompted for if empty)")
	root.Flags().BoolVarP(&f.yes, "yes", "y", false, "Overwrite an existing output file without asking")
	root.Flags().BoolVar(&f.checksum, "checksum", false, "Print the SHA-256 of the output file")
	root.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log progress and error details")

	root.MarkFlagsMutuallyExclusive("encrypt", "decrypt")
	root.MarkFlagsOneRequired("encrypt", "decrypt")
	_ = root.MarkFlagRequired("input")

	return root
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func run(ctx context.Context, cmd *cobra.Command, cfg *config.Config, prompter Prompter, f flags) error {
	logger := newLogger(cmd.ErrOrStderr(), f.verbose)

	mode := ModeEncrypt
	if f.decrypt {
		mode = ModeDecrypt
	}

	input, output, err := ResolvePaths(mode, f.input, f.output, cfg.Suffix)
	if err != nil {
		return err
	}
	if input == output {
		return fmt.Errorf("input and output are the same file: %s", input)
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input file not found: %s", input)
	}
	if info.IsDir() {
		return fmt.Errorf("input is a directory: %s", input)
	}

	if _, err := os.Stat(output); err == nil && !f.yes {
		fmt.Fprintf(cmd.OutOrStdout(), "Output file already exists: %s\n", output)
		ok, err := prompter.Confirm("Overwrite? [Y]es/[N]o: ")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Quit.")
			return ErrAborted
		}
	}

	password := f.password
	for password == "" {
		if password, err = prompter.Password("Password: "); err != nil {
			return err
		}
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts = append(opts, fcrypt.WithProgress(func(p float64) {
		logger.WithFields(logrus.Fields{
			"done":  humanize.IBytes(uint64(p * float64(info.Size()))),
			"total": humanize.IBytes(uint64(info.Size())),
		}).Debugf("%s: %.0f%%", mode, p*100)
	}))

	switch mode {
	case ModeEncrypt:
		logger.Infof("Encrypting file: %s", input)
		err = fcrypt.EncryptFile(ctx, input, output, password, opts...)
	case ModeDecrypt:
		logger.Infof("Decrypting file: %s", input)
		err = fcrypt.DecryptFile(ctx, input, output, password, opts...)
	}
	if err != nil {
		logger.WithError(err).Debug("operation failed")
		if rmErr := os.Remove(output); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.WithError(rmErr).Warnf("could not remove incomplete output %s", output)
		}
		return fmt.Errorf("failed to %s: %w", mode, fcrypt.SanitizeError(err))
	}

	if out, statErr := os.Stat(output); statErr == nil {
		logger.WithField("size", humanize.IBytes(uint64(out.Size()))).Infof("%sed -> %s", titleMode(mode), output)
	}

	if f.checksum {
		sum, err := fcrypt.Checksum(output)
		if err != nil {
			return fmt.Errorf("checksum: %w", fcrypt.SanitizeError(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "SHA256 (%s) = %s\n", output, sum)
	}
	return nil
}

func titleMode(m Mode) string {
	switch m {
	case ModeEncrypt:
		return "Encrypt"
	case ModeDecrypt:
		return "Decrypt"
	default:
		return "Process"
	}
}
