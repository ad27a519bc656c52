// Package prompt reads interactive answers from a line-oriented reader.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrClosed is returned when input ends before an answer was given.
var ErrClosed = errors.New("input closed before an answer was given")

// Reader defines the input side (for testing).
type Reader interface {
	ReadString(delim byte) (string, error)
}

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in  Reader
	out io.Writer
}

// New wraps in with a buffered reader.
func New(in io.Reader, out io.Writer) *Prompter {
	return NewWithReader(bufio.NewReader(in), out)
}

// NewWithReader allows injection of reader for testing.
func NewWithReader(in Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Line prints question and returns the answer without the line break.
func (p *Prompter) Line(question string) (string, error) {
	color.New(color.FgCyan).Fprint(p.out, question)
	input, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && input != "" {
			return strings.TrimRight(input, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrClosed
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(input, "\r\n"), nil
}

// Confirm asks a yes/no question. An empty answer picks def; anything that is
// not yes or no asks again.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for {
		answer, err := p.Line(fmt.Sprintf("%s %s ", question, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		color.New(color.FgRed).Fprintln(p.out, "Please answer y or n.")
	}
}
