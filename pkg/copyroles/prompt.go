package copyroles

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the operator questions and tells them what happened
type Prompter interface {
	// ReadLine shows prompt and returns the operator's answer without the
	// line terminator
	ReadLine(prompt string) (string, error)
	// WriteLine shows a line of output
	WriteLine(line string) error
}

// Terminal is a Prompter over a pair of streams, normally stdin and stdout
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a Terminal reading answers from in and writing to out
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ReadLine writes the prompt without a newline and blocks for one line of
// input. Input that ends before a newline is returned as is, so a closed
// input stream reads as an empty answer.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	if _, err := io.WriteString(t.out, prompt); err != nil {
		return "", err
	}
	line, err := t.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF {
		// keep the echoed answer on its own line
		fmt.Fprintln(t.out)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// WriteLine writes line followed by a newline
func (t *Terminal) WriteLine(line string) error {
	_, err := fmt.Fprintln(t.out, line)
	return err
}
