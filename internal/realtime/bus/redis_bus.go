package bus

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

const (
	redisDialTimeout    = 5 * time.Second
	redisPublishTimeout = 3 * time.Second
	redisBufferSize     = 256
)

// redisBus fans messages out over one pub/sub channel. Pub/sub is fire and
// forget: instances that are down miss messages, and the entry cache
// recovers on the next change.
type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisBus(cfg Config, log *logger.Logger) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	channel := cfg.RedisChannel
	if channel == "" {
		channel = "pintlog-sse"
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, DialTimeout: redisDialTimeout})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return &redisBus{
		log:     log.With("service", "RedisSSEBus", "channel", channel),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	raw, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, redisPublishTimeout)
	defer cancel()
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder returns once the subscription is confirmed by the server.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	go b.forward(ctx, sub, onMsg)
	return nil
}

func (b *redisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(realtime.SSEMessage)) {
	defer sub.Close()
	in := sub.Channel(goredis.WithChannelSize(redisBufferSize))
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				b.log.Warn("redis subscription closed")
				return
			}
			msg, err := decodeMessage([]byte(m.Payload))
			if err != nil {
				b.log.Warn("bad redis SSE payload", "error", err)
				continue
			}
			onMsg(msg)
		}
	}
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}
