package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

// maxMessageSize bounds a single WebSocket request.
const maxMessageSize = 64 * 1024

// wsRequest is one resolve request over the WebSocket.
type wsRequest struct {
	ID      json.RawMessage `json:"id,omitempty"`
	Source  string          `json:"source"`
	Kind    string          `json:"kind,omitempty"`
	Options requestOptions  `json:"options"`
}

// wsResponse answers a wsRequest with the same id.
type wsResponse struct {
	ID    json.RawMessage `json:"id,omitempty"`
	Path  string          `json:"path,omitempty"`
	Paths []string        `json:"paths,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

// handleWebSocket upgrades the connection and answers resolve requests
// until the client disconnects. Requests are handled in order.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp := s.answer(data)
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
}

// answer resolves one raw request.
func (s *Server) answer(data []byte) wsResponse {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.metrics.RecordWebSocketMessage("invalid")
		return wsResponse{Error: "invalid request: " + err.Error()}
	}

	opts, err := req.Options.toOptions()
	if err != nil {
		s.metrics.RecordWebSocketMessage("invalid")
		return wsResponse{ID: req.ID, Error: err.Error()}
	}

	res, err := s.resolve(req.Source, req.Kind, opts)
	if err != nil {
		s.metrics.RecordWebSocketMessage("error")
		body := errorBody(err)
		return wsResponse{ID: req.ID, Error: body.Error, Code: body.Code}
	}

	s.metrics.RecordWebSocketMessage("ok")
	return wsResponse{ID: req.ID, Path: res.Path, Paths: res.All()}
}
