package bus

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

func TestMemoryBusFansOutToForwarders(t *testing.T) {
	b := NewMemoryBus(logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan realtime.SSEMessage, 4)
	for i := 0; i < 2; i++ {
		if err := b.StartForwarder(ctx, func(m realtime.SSEMessage) { got <- m }); err != nil {
			t.Fatalf("StartForwarder: %v", err)
		}
	}
	msg := realtime.SSEMessage{Channel: realtime.ChannelEntries, Event: realtime.SSEEventDrinkEntryCreated}
	if err := b.Publish(ctx, msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	for i := 0; i < 2; i++ {
		select {
		case m := <-got:
			if m.Event != msg.Event {
				t.Fatalf("event: want=%s got=%s", msg.Event, m.Event)
			}
		case <-time.After(time.Second):
			t.Fatalf("forwarder %d not called", i)
		}
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Publish(ctx, msg); err == nil {
		t.Fatalf("Publish after close: want error")
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	if _, err := New(Config{Kind: "carrier-pigeon"}, logger.Nop()); err == nil {
		t.Fatalf("want error")
	}
	if _, err := New(Config{Kind: KindRedis}, logger.Nop()); err == nil {
		t.Fatalf("redis without addr: want error")
	}
	if _, err := New(Config{Kind: KindKafka}, logger.Nop()); err == nil {
		t.Fatalf("kafka without brokers: want error")
	}
}

func TestKafkaBusBuildsWithoutDialing(t *testing.T) {
	b, err := NewKafkaBus(Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "t"}, logger.Nop())
	if err != nil {
		t.Fatalf("NewKafkaBus: %v", err)
	}
	kb := b.(*kafkaBus)
	if kb.groupID == "" {
		t.Fatalf("group id should be generated")
	}
	_ = b.Close()
}

func TestDecodeMessage(t *testing.T) {
	if _, err := decodeMessage([]byte(`{"event":"DrinkEntryCreated"}`)); err == nil {
		t.Fatalf("missing channel: want error")
	}
	m, err := decodeMessage([]byte(`{"channel":"entries","event":"DrinkEntryDeleted","data":{"id":"x"}}`))
	if err != nil || m.Event != realtime.SSEEventDrinkEntryDeleted {
		t.Fatalf("decode: got=%+v err=%v", m, err)
	}
}

func TestEncodeMessageRequiresChannel(t *testing.T) {
	if _, err := encodeMessage(realtime.SSEMessage{Event: realtime.SSEEventDrinkEntryCreated}); err == nil {
		t.Fatalf("missing channel: want error")
	}
	raw, err := encodeMessage(realtime.SSEMessage{Channel: realtime.ChannelUsers, Event: realtime.SSEEventUserUpdated})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	m, err := decodeMessage(raw)
	if err != nil || m.Channel != realtime.ChannelUsers || m.Event != realtime.SSEEventUserUpdated {
		t.Fatalf("decode: got=%+v err=%v", m, err)
	}
}
