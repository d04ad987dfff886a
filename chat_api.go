package folio

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// chatUnavailable is the JSON body served while chat is disabled.
var chatUnavailable = map[string]string{"error": "Chat is temporarily unavailable for maintenance."}

// chatEnabled reports whether the widget may talk to the agent API.
func (a *App) chatEnabled() (bool, error) {
	if a.Chat == nil {
		return false, nil
	}
	maintenance, err := a.Meta.ChatMaintenance()
	if err != nil {
		return false, err
	}
	return !maintenance, nil
}

// handleChatAgent returns the identity of the agent behind the widget.
func (a *App) handleChatAgent(c echo.Context) error {
	enabled, err := a.chatEnabled()
	if err != nil {
		return err
	}
	if !enabled {
		return c.JSON(http.StatusServiceUnavailable, chatUnavailable)
	}
	agent, err := a.Chat.Agent(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("chat agent lookup: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to load agent."})
	}
	return c.JSON(http.StatusOK, agent)
}

// handleChatMessage relays one user message to the agent and returns the reply.
func (a *App) handleChatMessage(c echo.Context) error {
	enabled, err := a.chatEnabled()
	if err != nil {
		return err
	}
	if !enabled {
		return c.JSON(http.StatusServiceUnavailable, chatUnavailable)
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body."})
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message is required."})
	}

	reply, err := a.Chat.Send(c.Request().Context(), req.Message)
	if err != nil {
		c.Logger().Errorf("chat send: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to reach the agent."})
	}
	return c.JSON(http.StatusOK, map[string]string{"response": reply})
}
