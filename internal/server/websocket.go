package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kubesleuth/kubesleuth/internal/metrics"
	"github.com/kubesleuth/kubesleuth/pkg/models"
)

// Websocket event types sent to the client.
const (
	wsEventStep   = "step"
	wsEventResult = "result"
	wsEventError  = "error"
)

// wsEvent is one message on the /ws/chat stream. Step events carry a
// reasoning step as it completes; a result or error event ends the
// exchange.
type wsEvent struct {
	Type      string                `json:"type"`
	Step      *models.ReasoningStep `json:"step,omitempty"`
	Response  string                `json:"response,omitempty"`
	ToolsUsed []string              `json:"tools_used,omitempty"`
	Outcome   string                `json:"outcome,omitempty"`
	Error     string                `json:"error,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced on the rest of the API; the websocket accepts the
	// same origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleChatWS streams reasoning steps over a websocket. Each inbound
// message is a ChatRequest; the connection stays open for follow-up
// questions.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	metrics.WebSocketConnections.Inc()
	defer metrics.WebSocketConnections.Dec()

	for {
		var req models.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		if err := s.streamDiagnosis(r, conn, req); err != nil {
			return
		}
	}
}

func (s *Server) streamDiagnosis(r *http.Request, conn *websocket.Conn, req models.ChatRequest) error {
	if req.Message == "" {
		return sendEvent(conn, wsEvent{Type: wsEventError, Error: "message is required"})
	}
	if s.opts.Agent == nil {
		return sendEvent(conn, wsEvent{Type: wsEventError, Error: "agent not initialized"})
	}
	if req.Namespace == "" {
		req.Namespace = "default"
	}

	result, err := s.opts.Agent.DiagnoseStream(r.Context(), req.Message, req.Namespace,
		func(step models.ReasoningStep) {
			_ = sendEvent(conn, wsEvent{Type: wsEventStep, Step: &step})
		})
	if err != nil {
		return sendEvent(conn, wsEvent{Type: wsEventError, Error: err.Error()})
	}

	return sendEvent(conn, wsEvent{
		Type:      wsEventResult,
		Response:  result.Answer,
		ToolsUsed: result.ToolsUsed,
		Outcome:   result.Outcome.String(),
	})
}

func sendEvent(conn *websocket.Conn, ev wsEvent) error {
	ev.Timestamp = time.Now()
	return conn.WriteJSON(ev)
}
