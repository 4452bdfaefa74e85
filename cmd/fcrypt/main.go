/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Command fcrypt encrypts and decrypts files with a password.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/gitrgoliveira/go-fcrypt/internal/cli"
	"github.com/gitrgoliveira/go-fcrypt/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("Configuration error: %v", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(cfg, version, cli.NewTerminalPrompter(os.Stdin, os.Stderr))
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrAborted) {
			return 0
		}
		logger.Error(err)
		return 1
	}
	return 0
}
