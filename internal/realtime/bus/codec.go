package bus

import (
	"encoding/json"
	"fmt"

	"github.com/yungbote/pintlog-backend/internal/realtime"
)

// Redis and kafka carry the SSEMessage as JSON. Both ends reject messages
// without a channel.

func encodeMessage(msg realtime.SSEMessage) ([]byte, error) {
	if msg.Channel == "" {
		return nil, fmt.Errorf("message without channel")
	}
	return json.Marshal(msg)
}

func decodeMessage(raw []byte) (realtime.SSEMessage, error) {
	var msg realtime.SSEMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return realtime.SSEMessage{}, err
	}
	if msg.Channel == "" {
		return realtime.SSEMessage{}, fmt.Errorf("message without channel")
	}
	return msg, nil
}
