package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pintlog-backend/internal/http/response"
	"github.com/yungbote/pintlog-backend/internal/observability"
	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
	"github.com/yungbote/pintlog-backend/internal/platform/ctxutil"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.RWMutex
	clients map[uuid.UUID]*realtime.SSEClient // key: SSEClient.ID
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /api/sse/stream
// Every stream starts on the shared entries and users channels plus the
// caller's own user channel. The "ready" event carries the client id used by
// subscribe/unsubscribe.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	s := ctxutil.GetSession(c.Request.Context())
	if !s.Valid() {
		response.RespondAPIError(c, apierr.Unauthorized(fmt.Errorf("not authenticated")))
		return
	}
	client := h.hub.NewSSEClient(s.UserID)
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.hub.AddChannel(client, realtime.ChannelEntries)
	h.hub.AddChannel(client, realtime.ChannelUsers)
	h.hub.AddChannel(client, realtime.UserChannel(s.UserID))
	h.log.Info("SSE stream open", "user_id", s.UserID, "client_id", client.ID)
	observability.Current().SSEClientConnected()

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	delete(h.clients, client.ID)
	h.mu.Unlock()
	h.hub.CloseClient(client)
	observability.Current().SSEClientDisconnected()
	h.log.Info("SSE stream closed", "user_id", s.UserID, "client_id", client.ID)
}

type channelRequest struct {
	ClientID uuid.UUID `json:"client_id"`
	Channel  string    `json:"channel"`
}

// channelAllowed keeps callers on the shared channels and their own.
func channelAllowed(s *ctxutil.Session, channel string) bool {
	switch channel {
	case realtime.ChannelEntries, realtime.ChannelUsers, realtime.UserChannel(s.UserID):
		return true
	}
	return false
}

func (h *RealtimeHandler) resolve(c *gin.Context) (*realtime.SSEClient, string, bool) {
	s := ctxutil.GetSession(c.Request.Context())
	if !s.Valid() {
		response.RespondAPIError(c, apierr.Unauthorized(fmt.Errorf("not authenticated")))
		return nil, "", false
	}
	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Channel) == "" || req.ClientID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("client_id and channel are required"))
		return nil, "", false
	}
	channel := strings.TrimSpace(req.Channel)
	if !channelAllowed(s, channel) {
		response.RespondAPIError(c, apierr.Forbidden(fmt.Errorf("channel %q not allowed", channel)))
		return nil, "", false
	}
	h.mu.RLock()
	client, ok := h.clients[req.ClientID]
	h.mu.RUnlock()
	if !ok || client.UserID != s.UserID {
		response.RespondError(c, http.StatusConflict, apierr.CodeConflict, fmt.Errorf("no active SSE connection for this client"))
		return nil, "", false
	}
	return client, channel, true
}

// POST /api/sse/subscribe
func (h *RealtimeHandler) SSESubscribe(c *gin.Context) {
	client, channel, ok := h.resolve(c)
	if !ok {
		return
	}
	h.hub.AddChannel(client, channel)
	response.RespondOK(c, gin.H{"message": "subscribed", "channel": channel})
}

// POST /api/sse/unsubscribe
func (h *RealtimeHandler) SSEUnsubscribe(c *gin.Context) {
	client, channel, ok := h.resolve(c)
	if !ok {
		return
	}
	h.hub.RemoveChannel(client, channel)
	response.RespondOK(c, gin.H{"message": "unsubscribed", "channel": channel})
}
