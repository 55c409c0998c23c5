package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/taskflow/backend/internal/infrastructure/logger"
	"github.com/taskflow/backend/internal/transport/ws"
)

type EventsHandler struct {
	hub    *ws.Hub
	logger *logger.Logger
}

func NewEventsHandler(hub *ws.Hub, logger *logger.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger}
}

// Handle streams task events to the connection until the peer goes away.
// Inbound frames are read and discarded.
func (h *EventsHandler) Handle(c *websocket.Conn) {
	h.logger.Infow("task_events_connect", "remote", c.RemoteAddr().String())
	unsubscribe := h.hub.Subscribe(c)
	defer unsubscribe()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			h.logger.Infow("task_events_disconnect", "remote", c.RemoteAddr().String(), "reason", err.Error())
			return
		}
	}
}
