package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/longevity-score-server/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// CORS is enforced at the middleware layer for the REST routes; the
	// stream endpoint matches that open policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamMessage is one frame of the score stream. Type is "impact" while
// results arrive, then "complete" with the full response, or "error".
type streamMessage struct {
	Type     string                 `json:"type"`
	Impact   *domain.LongevityImpact `json:"impact,omitempty"`
	Response *domain.ScoreResponse  `json:"response,omitempty"`
	Error    *domain.APIError       `json:"error,omitempty"`
}

const streamWriteTimeout = 10 * time.Second

// handleScoreStream upgrades to a WebSocket, reads one score request, and
// streams each biomarker impact as it is computed before sending the final
// assembled response.
func (s *Server) handleScoreStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	var req domain.ScoreRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.writeStreamError(conn, domain.ErrInvalidInput, "invalid score request", err.Error(), c.GetString("correlation_id"))
		return
	}

	// Impacts finish on engine goroutines; serialize writes to the socket.
	var writeMu sync.Mutex
	writeFrame := func(msg streamMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		return conn.WriteJSON(msg)
	}

	resp, err := s.scorer.ScoreWithProgress(c.Request.Context(), &req, func(impact domain.LongevityImpact) {
		if err := writeFrame(streamMessage{Type: "impact", Impact: &impact}); err != nil {
			s.log.WithError(err).Debug("Dropped stream frame")
		}
	})
	if err != nil {
		code := domain.ErrInternalServer
		if _, ok := err.(*domain.ValidationError); ok {
			code = domain.ErrInvalidInput
		}
		s.writeStreamError(conn, code, "scoring failed", err.Error(), c.GetString("correlation_id"))
		return
	}

	if err := writeFrame(streamMessage{Type: "complete", Response: resp}); err != nil {
		s.log.WithError(err).Warn("Failed to send final stream frame")
		return
	}

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(streamWriteTimeout))
}

func (s *Server) writeStreamError(conn *websocket.Conn, code, message, details, correlationID string) {
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	conn.WriteJSON(streamMessage{
		Type:  "error",
		Error: domain.NewAPIError(code, message, details, correlationID),
	})
}
