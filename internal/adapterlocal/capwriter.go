// SPDX-License-Identifier: MPL-2.0

package adapterlocal

import (
	"sync"

	"github.com/xec-sh/xec/internal/xecore"
)

// cappedBuffer accumulates up to limit bytes and then refuses further
// writes with xecore.OutputTooLargeError, rather than growing without
// bound — the spec requires the adapter to either stream or fail once an
// implementation-defined maximum is exceeded; this adapter fails.
type cappedBuffer struct {
	mu     sync.Mutex
	stream string
	limit  int64
	buf    []byte
	tripped error
}

func newCappedBuffer(stream string, limit int64) *cappedBuffer {
	return &cappedBuffer{stream: stream, limit: limit}
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tripped != nil {
		return 0, c.tripped
	}
	if int64(len(c.buf)+len(p)) > c.limit {
		c.tripped = &xecore.OutputTooLargeError{Stream: c.stream, Limit: c.limit}
		return 0, c.tripped
	}
	c.buf = append(c.buf, p...)
	return len(p), nil
}

func (c *cappedBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.buf)
}

func (c *cappedBuffer) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tripped
}
