package factory

import (
	"io"
	"sync"

	"go.uber.org/multierr"
)

// Closers collects the resources opened by the factories so the
// application can release them on shutdown
type Closers struct {
	mu      sync.Mutex
	closers []io.Closer
}

// NewClosers creates an empty collection
func NewClosers() *Closers {
	return &Closers{}
}

// Add registers c, ignoring nil values
func (c *Closers) Add(closer io.Closer) {
	if closer == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, closer)
}

// Close closes everything in reverse order of registration and combines the errors
func (c *Closers) Close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, closers[i].Close())
	}
	return err
}
