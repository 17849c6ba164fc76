// Package console provides the interactive line reader for the chat
// loop. The loop only depends on the three-way outcome of ReadLine:
// a line, end of input, or an error.
package console

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Reader yields one line of user input at a time. io.EOF signals end
// of input.
type Reader interface {
	ReadLine(prompt string) (string, error)
}

// TermReader reads from a terminal in raw mode so line editing behaves
// the way the surrounding shell expects, falling back to buffered
// reads when stdin is a pipe.
type TermReader struct {
	in    *os.File
	t     *term.Terminal
	plain *bufio.Reader
}

// NewTermReader wraps in, normally os.Stdin.
func NewTermReader(in *os.File) *TermReader {
	return &TermReader{
		in:    in,
		t:     term.NewTerminal(in, ""),
		plain: bufio.NewReader(in),
	}
}

// ReadLine prints prompt and blocks for one line. The terminal is
// restored before returning, whatever the outcome.
func (r *TermReader) ReadLine(prompt string) (string, error) {
	fd := int(r.in.Fd())
	if !term.IsTerminal(fd) {
		fmt.Print(prompt)
		line, err := r.plain.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return "", err
	}
	if width, height, sizeErr := term.GetSize(fd); sizeErr == nil {
		r.t.SetSize(width, height)
	}
	r.t.SetPrompt(prompt)

	line, readErr := r.t.ReadLine()
	if restoreErr := term.Restore(fd, oldState); restoreErr != nil {
		return "", restoreErr
	}
	return line, readErr
}
