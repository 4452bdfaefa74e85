/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the user questions. The terminal implementation is used by
// the command; tests substitute their own.
type Prompter interface {
	// Confirm asks a yes/no question. Only "y" and "yes" count as yes.
	Confirm(question string) (bool, error)
	// Password reads a password without echoing it when possible.
	Password(prompt string) (string, error)
}

type terminalPrompter struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

// NewTerminalPrompter prompts on out and reads answers from in. Passwords are
// read without echo when in is a terminal, otherwise as a plain line.
func NewTerminalPrompter(in *os.File, out io.Writer) Prompter {
	return &terminalPrompter{in: in, out: out, reader: bufio.NewReader(in)}
}

func (p *terminalPrompter) Confirm(question string) (bool, error) {
	fmt.Fprint(p.out, question)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *terminalPrompter) Password(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if term.IsTerminal(int(p.in.Fd())) {
		pw, err := term.ReadPassword(int(p.in.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}
	return p.readLine()
}

// readLine returns the next line without its line ending. A final line
// without a newline is returned as is; only a bare EOF is an error.
func (p *terminalPrompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
