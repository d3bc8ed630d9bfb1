package delivery

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Func adapts an ordinary function to the engine's DeliveryChannel interface.
type Func func(ctx context.Context, destination, code, purpose string) error

// Deliver calls the wrapped function.
func (f Func) Deliver(ctx context.Context, destination, code, purpose string) error {
	return f(ctx, destination, code, purpose)
}

// WriterChannel writes each formatted message to an io.Writer. Intended for
// examples and local development, where the "out-of-band channel" is a
// terminal.
type WriterChannel struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewWriterChannel(w io.Writer) *WriterChannel {
	return &WriterChannel{writer: w}
}

// Deliver writes one line per code.
func (c *WriterChannel) Deliver(_ context.Context, destination, code, purpose string) error {
	if c == nil || c.writer == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := fmt.Fprintf(c.writer, "to=%s %s\n", destination, FormatMessage(code, purpose))
	return err
}

// FormatMessage renders the one-line message body shared by all adapters.
func FormatMessage(code, purpose string) string {
	return fmt.Sprintf("Your %s code is %s. It expires shortly; do not share it.", purpose, code)
}
