package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/wamunyima3/CloudScribe/internal/api/middleware"
	"github.com/wamunyima3/CloudScribe/internal/infrastructure/ws"
)

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Connect upgrades an authenticated request to a WebSocket that receives the
// caller's push notifications. The connection replaces any earlier one for
// the same user.
//
// @Summary      Notification stream
// @Tags         notifications
// @Security     BearerAuth
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      401  {object}  ErrorResponse
// @Router       /ws [get]
func (h *WSHandler) Connect(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	conn, err := h.hub.Upgrade(c.Response(), c.Request(), middleware.Subprotocol(c))
	if err != nil {
		// The upgrader has already written an HTTP error response.
		return nil
	}
	h.hub.Serve(id.UserID, conn)
	return nil
}
