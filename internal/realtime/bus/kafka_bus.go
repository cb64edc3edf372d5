package bus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

type kafkaBus struct {
	log     *logger.Logger
	brokers []string
	topic   string
	groupID string
	writer  *kafka.Writer
}

// NewKafkaBus publishes to one topic. Each instance reads with its own
// consumer group so every instance sees every message.
func NewKafkaBus(cfg Config, log *logger.Logger) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("missing KAFKA_BROKERS")
	}
	if cfg.KafkaTopic == "" {
		return nil, fmt.Errorf("missing KAFKA_TOPIC")
	}
	group := cfg.KafkaGroupID
	if group == "" {
		group = "pintlog-sse-" + uuid.NewString()
	}
	return &kafkaBus{
		log:     log.With("service", "KafkaSSEBus", "topic", cfg.KafkaTopic),
		brokers: cfg.KafkaBrokers,
		topic:   cfg.KafkaTopic,
		groupID: group,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.KafkaBrokers...),
			Topic:        cfg.KafkaTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
			Async:        false,
		},
	}, nil
}

func (b *kafkaBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	raw, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	return b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Channel),
		Value: raw,
		Time:  time.Now().UTC(),
	})
}

func (b *kafkaBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		GroupID:     b.groupID,
		Topic:       b.topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.LastOffset,
	})

	go func() {
		defer reader.Close()
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					return
				}
				b.log.Warn("kafka read failed", "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}
			msg, err := decodeMessage(m.Value)
			if err != nil {
				b.log.Warn("bad kafka SSE payload", "error", err, "offset", m.Offset)
				continue
			}
			onMsg(msg)
		}
	}()
	return nil
}

func (b *kafkaBus) Close() error {
	if b == nil || b.writer == nil {
		return nil
	}
	return b.writer.Close()
}
