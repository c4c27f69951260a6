package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/MattLee479/UpdatedWebsite2/internal/dashboard"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket sends the current dashboard, then a fresh one whenever the
// log changes.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(s.Payload(c.Request.Context(), dashboard.Options{})); err != nil {
		return
	}
	if s.deps.Hub == nil {
		return
	}

	updates := s.deps.Hub.Subscribe()
	defer s.deps.Hub.Unsubscribe(updates)

	// Read pump: detect client disconnect.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case p, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(p); err != nil {
				s.log.WithError(err).Debug("websocket write failed")
				return
			}
		}
	}
}
