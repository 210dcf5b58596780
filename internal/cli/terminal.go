// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// errAborted is returned when the user cancels a prompt with Ctrl+C.
var errAborted = errors.New("aborted")

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// prompter reads answers from a terminal with line editing, or line by
// line from any other reader.
type prompter struct {
	in     io.Reader
	out    io.Writer
	tty    bool
	reader *bufio.Reader
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, out: out, tty: isTerminal(in), reader: bufio.NewReader(in)}
}

// Line asks for a line of text. def is pre-filled on a terminal and used
// for an empty answer otherwise.
func (p *prompter) Line(prompt, def string) (string, error) {
	if p.tty {
		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		var (
			answer string
			err    error
		)
		if def != "" {
			answer, err = line.PromptWithSuggestion(prompt, def, -1)
		} else {
			answer, err = line.Prompt(prompt)
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", errAborted
		}
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(answer), nil
	}

	fmt.Fprint(p.out, prompt)
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		answer = def
	}
	return answer, nil
}

// Password asks for a secret without echo on a terminal.
func (p *prompter) Password(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if p.tty {
		f := p.in.(*os.File)
		pass, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(pass)), nil
	}
	return p.readLine()
}

func (p *prompter) readLine() (string, error) {
	s, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("no input: %w", err)
		}
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}
