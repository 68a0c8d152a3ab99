package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type line struct {
	text string
	err  error
}

// Console reads answers line by line and writes prompts and results. Lines
// are read on a background goroutine so a pending prompt can be abandoned
// when the context is cancelled. Close stops the reader once its current
// read returns.
type Console struct {
	in      *bufio.Reader
	out     io.Writer
	lines   chan line
	done    chan struct{}
	stopped chan struct{}

	start sync.Once
	stop  sync.Once
}

// NewConsole creates a console over the given streams
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:      bufio.NewReader(in),
		out:     out,
		lines:   make(chan line),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (c *Console) readLoop() {
	defer close(c.stopped)
	defer close(c.lines)
	for {
		text, err := c.in.ReadString('\n')
		if text != "" && !c.send(line{text: text}) {
			return
		}
		if err != nil {
			if err != io.EOF {
				c.send(line{err: err})
			}
			return
		}
	}
}

// send hands a line to Ask, giving up once the console is closed
func (c *Console) send(l line) bool {
	select {
	case c.lines <- l:
		return true
	case <-c.done:
		return false
	}
}

// Close stops the background reader
func (c *Console) Close() {
	c.stop.Do(func() { close(c.done) })
}

// Ask writes prompt and returns the trimmed answer. It returns io.EOF once
// input is exhausted.
func (c *Console) Ask(ctx context.Context, prompt string) (string, error) {
	c.start.Do(func() { go c.readLoop() })

	fmt.Fprint(c.out, prompt)
	select {
	case l, ok := <-c.lines:
		if !ok {
			fmt.Fprintln(c.out)
			return "", io.EOF
		}
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	}
}

// Println writes a line of output
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}
