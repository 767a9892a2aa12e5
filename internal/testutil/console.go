package testutil

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// ConsoleClient drives a line-oriented console through an in-memory pipe:
// the console reads from Input and writes to Output.
type ConsoleClient struct {
	in  *io.PipeReader
	w   *io.PipeWriter
	out *lockedBuffer
	// read marks how much of out ReadUntil has consumed.
	read int
	t    *testing.T
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewConsoleClient creates a client whose pipe is closed at test cleanup.
//
// Postcondition: Input and Output are ready to hand to a console.
func NewConsoleClient(t *testing.T) *ConsoleClient {
	t.Helper()
	r, w := io.Pipe()
	c := &ConsoleClient{in: r, w: w, out: &lockedBuffer{}, t: t}
	t.Cleanup(func() {
		_ = w.Close()
	})
	return c
}

// Input is the reader the console consumes.
func (c *ConsoleClient) Input() io.Reader { return c.in }

// Output is the writer the console prints to.
func (c *ConsoleClient) Output() io.Writer { return c.out }

// ReadUntil waits until output not yet consumed contains substr.
// It returns the new output up to and including the match.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns the accumulated output containing substr, or fails on timeout.
func (c *ConsoleClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		all := c.out.String()
		pending := all[c.read:]
		if idx := strings.Index(pending, substr); idx >= 0 {
			end := idx + len(substr)
			c.read += end
			return pending[:end]
		}
		if time.Now().After(deadline) {
			c.t.Fatalf("reading until %q: got %q", substr, pending)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Send writes a line of input to the console.
//
// Precondition: text should not contain trailing newline characters.
func (c *ConsoleClient) Send(text string) {
	c.t.Helper()
	done := make(chan error, 1)
	go func() {
		_, err := fmt.Fprintf(c.w, "%s\n", text)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			c.t.Fatalf("sending %q: %v", text, err)
		}
	case <-time.After(5 * time.Second):
		c.t.Fatalf("sending %q: console not reading", text)
	}
}

// Close ends the console's input.
func (c *ConsoleClient) Close() {
	_ = c.w.Close()
}
