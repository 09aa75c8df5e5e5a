// Package prompt asks yes/no questions on a terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// Compile-time check that Prompter implements ports.Prompter.
var _ ports.Prompter = (*Prompter)(nil)

// Prompter reads answers line by line. Only "y" and "n" (any case) are
// accepted; anything else repeats the question.
type Prompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter reading from in and writing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm implements ports.Prompter. End of input answers "no" so that a
// non-interactive run never overwrites anything.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		if _, err := fmt.Fprintf(p.out, "%s (y/n): ", question); err != nil {
			return false, fmt.Errorf("writing prompt: %w", err)
		}

		line, err := p.in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))

		switch answer {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(p.out)
				return false, nil
			}
			return false, fmt.Errorf("reading answer: %w", err)
		}

		fmt.Fprintln(p.out, "Invalid input. Please enter 'y' or 'n'.")
	}
}
