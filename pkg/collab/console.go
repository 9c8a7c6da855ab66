package collab

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Console is an Asker that prints the question to a writer and reads one
// line from a reader. It is the default interactive collaborator for CLI
// hosts; embedders replace it with their own UI handler.
type Console struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewConsole creates an Asker bound to stdin/stdout.
func NewConsole() *Console {
	return NewConsoleWith(os.Stdin, os.Stdout)
}

// NewConsoleWith creates an Asker bound to an arbitrary reader and writer.
func NewConsoleWith(in io.Reader, out io.Writer) *Console {
	return &Console{reader: bufio.NewReader(in), out: out}
}

// Ask writes the question and blocks until a line of input arrives.
func (c *Console) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Collaborator: "console", Err: err}
	}
	if _, err := fmt.Fprint(c.out, question); err != nil {
		return "", &Error{Collaborator: "console", Err: err}
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", &Error{Collaborator: "console", Err: err}
	}
	return strings.TrimRight(line, "\r\n"), nil
}
