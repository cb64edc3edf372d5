package services

import (
	"context"

	"github.com/yungbote/pintlog-backend/internal/observability"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
	"github.com/yungbote/pintlog-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

// BusEmitter publishes through the bus; the forwarder on every instance,
// this one included, performs the local broadcast.
type BusEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *BusEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	err := e.Bus.Publish(ctx, msg)
	observability.Current().ObservePublish(string(msg.Event), err)
	if err != nil && e.Log != nil {
		e.Log.Warn("realtime publish failed", "event", msg.Event, "channel", msg.Channel, "error", err)
	}
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, realtime.SSEMessage) {}
