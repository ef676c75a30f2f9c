// Package prompt collects operator input: the target menu, the registration
// token and the replace-existing confirmation.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Option is one menu entry.
type Option struct {
	Key   string
	Label string
}

// Prompter asks the operator for input. Returned strings are raw; callers validate them.
type Prompter interface {
	Choose(title string, options []Option) (string, error)
	Token(title string) (string, error)
	Confirm(question string) (bool, error)
}

// New returns a huh-based prompter when both streams are terminals and a
// line-based one otherwise.
func New(in *os.File, out *os.File) Prompter {
	if term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd())) {
		return NewHuh()
	}
	return NewLine(in, out)
}

// Line reads answers line by line. It is used for piped input and in tests.
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine returns a line prompter reading from in and writing prompts to out.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

func (l *Line) Choose(title string, options []Option) (string, error) {
	fmt.Fprintln(l.out, title)
	keys := make([]string, 0, len(options))
	for _, o := range options {
		fmt.Fprintf(l.out, " %s - %s\n", o.Key, o.Label)
		keys = append(keys, o.Key)
	}
	fmt.Fprintf(l.out, "Enter a number (%s): ", strings.Join(keys, "/"))
	return l.readLine()
}

func (l *Line) Token(title string) (string, error) {
	fmt.Fprintf(l.out, "%s: ", title)
	return l.readLine()
}

// Confirm treats only "y" (any case) as yes.
func (l *Line) Confirm(question string) (bool, error) {
	fmt.Fprintf(l.out, "%s (y/n): ", question)
	answer, err := l.readLine()
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

// readLine returns the next trimmed line. End of input yields what was read so far.
func (l *Line) readLine() (string, error) {
	line, err := l.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
