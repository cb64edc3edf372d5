package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

// memoryBus delivers in-process, for single-instance deployments and tests.
type memoryBus struct {
	log *logger.Logger

	mu       sync.RWMutex
	handlers map[int]func(realtime.SSEMessage)
	nextID   int
	closed   bool
}

func NewMemoryBus(log *logger.Logger) Bus {
	return &memoryBus{
		log:      log.With("service", "MemorySSEBus"),
		handlers: make(map[int]func(realtime.SSEMessage)),
	}
}

func (b *memoryBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("memory SSE bus closed")
	}
	for _, h := range b.handlers {
		h(msg)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory SSE bus closed")
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = onMsg
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[int]func(realtime.SSEMessage))
	return nil
}
