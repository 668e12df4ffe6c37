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

// readPassword and isTerminal are test seams for golang.org/x/term.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var errPasswordMismatch = errors.New("passwords do not match")

// input reads secrets from the command's stdin. On a terminal the echo is
// turned off; otherwise one line is read per secret, so passwords can be
// piped in by scripts.
type input struct {
	in     io.Reader
	prompt io.Writer
	lines  *bufio.Reader
}

func newInput(in io.Reader, prompt io.Writer) *input {
	return &input{in: in, prompt: prompt}
}

func (i *input) terminalFd() (int, bool) {
	f, ok := i.in.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, isTerminal(fd)
}

// secret reads one secret. The caller should wipe the result.
func (i *input) secret(prompt string) ([]byte, error) {
	if fd, ok := i.terminalFd(); ok {
		if _, err := fmt.Fprint(i.prompt, prompt+": "); err != nil {
			return nil, err
		}
		pw, err := readPassword(fd)
		fmt.Fprintln(i.prompt)
		if err != nil {
			return nil, err
		}
		return pw, nil
	}

	if i.lines == nil {
		i.lines = bufio.NewReader(i.in)
	}
	line, err := i.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, fmt.Errorf("read %s: %w", strings.ToLower(prompt), err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

// newSecret reads a secret and, on a terminal, asks for it a second time.
func (i *input) newSecret(prompt string) ([]byte, error) {
	first, err := i.secret(prompt)
	if err != nil {
		return nil, err
	}
	if _, ok := i.terminalFd(); !ok {
		return first, nil
	}

	again, err := i.secret("Repeat " + strings.ToLower(prompt))
	if err != nil {
		return nil, err
	}
	if string(first) != string(again) {
		return nil, errPasswordMismatch
	}
	return first, nil
}
