package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type lineResult struct {
	line string
	err  error
}

// Console reads player input line by line and writes prompts and output.
// It implements combat.Input.
type Console struct {
	lines <-chan lineResult
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// New starts reading lines from r in the background.
//
// Precondition: r and w must be non-nil.
// Postcondition: r is read until it returns an error; that error (io.EOF at
// end of input) is reported by the read that reaches it.
func New(r io.Reader, w io.Writer, color bool) *Console {
	ch := make(chan lineResult)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- lineResult{line: strings.TrimRight(sc.Text(), "\r")}
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		ch <- lineResult{err: err}
	}()
	return &Console{lines: ch, w: w, color: color}
}

// Printf writes formatted output.
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.w, format, args...)
}

// Paint colors text when color output is enabled.
func (c *Console) Paint(color, text string) string {
	if !c.color {
		return text
	}
	return Colorize(color, text)
}

// ReadLine writes prompt and waits for the next line.
//
// Postcondition: returns ctx.Err() if ctx ends first, io.EOF once input is
// exhausted.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	if prompt != "" {
		c.Printf("%s", c.Paint(BrightCyan, prompt))
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	}
}

// NextCommand prompts for the player's next combat command.
func (c *Console) NextCommand(ctx context.Context) (string, error) {
	return c.ReadLine(ctx, "> ")
}

// Confirm asks a yes/no question until the answer is y, yes, n or no.
func (c *Console) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		line, err := c.ReadLine(ctx, question+" (Y/N) ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// ConfirmRevive asks whether the dead character should be revived.
func (c *Console) ConfirmRevive(ctx context.Context) (bool, error) {
	return c.Confirm(ctx, "Do you want to restart?")
}
