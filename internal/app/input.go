package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrEmptyPassword is returned when the user enters nothing.
var ErrEmptyPassword = errors.New("empty password")

// test seams for the terminal
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// Prompter asks the user for secrets. On a terminal input is not echoed;
// otherwise one line is read per prompt, so passwords can be piped in.
type Prompter struct {
	fd     int
	reader *bufio.Reader
	out    io.Writer
}

// NewPrompter prompts on out and reads from in. Only an *os.File can be a
// terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return newPrompter(in, fd, out)
}

func newPrompter(in io.Reader, fd int, out io.Writer) *Prompter {
	return &Prompter{fd: fd, reader: bufio.NewReader(in), out: out}
}

// Password prints prompt and reads a password.
func (p *Prompter) Password(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt+": "); err != nil {
		return "", err
	}

	var password string
	if isTerminal(p.fd) {
		pw, err := readPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		password = string(pw)
	} else {
		line, err := p.reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return "", err
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		return "", ErrEmptyPassword
	}
	return password, nil
}
