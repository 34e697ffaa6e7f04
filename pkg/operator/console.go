package operator

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// Console reads operator commands line by line and queues them for the loop.
type Console struct {
	in  io.Reader
	out io.Writer
}

// NewConsole reads from in and reports parse errors to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

// Run scans lines until ctx is cancelled or input ends, sending each parsed
// command on cmds. Parse errors are printed and skipped.
func (c *Console) Run(ctx context.Context, cmds chan<- Command) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			cmd, err := Parse(line)
			if err != nil {
				fmt.Fprintf(c.out, "⚠️  %v (type 'help')\n", err)
				continue
			}
			if cmd.Op == OpNone {
				continue
			}
			select {
			case cmds <- cmd:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
