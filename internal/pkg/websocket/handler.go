package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades authenticated requests onto the import feed
type Handler struct {
	hub        *Hub
	subjectKey string
	logger     zerolog.Logger
}

// NewHandler creates a new Handler. subjectKey names the gin context key
// holding the authenticated subject.
func NewHandler(hub *Hub, subjectKey string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		subjectKey: subjectKey,
		logger:     logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to import events
// @Description Upgrades the connection to a WebSocket that receives one JSON event per committed or rejected import
// @Tags imports, websocket
// @Security BearerAuth
// @Param token query string false "JWT token, for clients that cannot set headers"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin role required"
// @Router /imports/events [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	subject := c.GetString(h.subjectKey)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("subject", subject).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:     h.hub,
		conn:    conn,
		send:    make(chan []byte, 32),
		subject: subject,
		logger:  h.logger,
	}
	if !h.hub.join(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("subject", subject).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("Import feed connection established")
}
