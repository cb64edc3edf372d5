package bus

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/pintlog-backend/internal/platform/envutil"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

// Bus carries realtime messages between service instances. Every instance
// runs a forwarder that rebroadcasts received messages on its local hub.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

const (
	KindMemory = "memory"
	KindRedis  = "redis"
	KindKafka  = "kafka"
)

type Config struct {
	Kind string

	RedisAddr    string
	RedisChannel string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
}

func ConfigFromEnv() Config {
	return Config{
		Kind:         strings.ToLower(envutil.String("REALTIME_BUS", KindMemory)),
		RedisAddr:    envutil.String("REDIS_ADDR", ""),
		RedisChannel: envutil.String("REDIS_CHANNEL", "pintlog-sse"),
		KafkaBrokers: envutil.List("KAFKA_BROKERS", nil),
		KafkaTopic:   envutil.String("KAFKA_TOPIC", "pintlog.realtime"),
		KafkaGroupID: envutil.String("KAFKA_GROUP_ID", ""),
	}
}

func New(cfg Config, log *logger.Logger) (Bus, error) {
	switch cfg.Kind {
	case KindMemory, "":
		return NewMemoryBus(log), nil
	case KindRedis:
		return NewRedisBus(cfg, log)
	case KindKafka:
		return NewKafkaBus(cfg, log)
	default:
		return nil, fmt.Errorf("unknown REALTIME_BUS %q", cfg.Kind)
	}
}
