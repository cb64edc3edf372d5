package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// SSEClient is one open stream. Channels is guarded by the hub lock.
type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage

	done      chan struct{}
	closeOnce sync.Once
}

// offer queues msg without blocking; false means the buffer is full.
func (c *SSEClient) offer(msg SSEMessage) bool {
	select {
	case c.Outbound <- msg:
		return true
	default:
		return false
	}
}

func (c *SSEClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		close(c.Outbound)
	})
}
