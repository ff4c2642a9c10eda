package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/logger"
)

// Chat modes accepted over WebSocket.
const (
	ChatModeGeneral       = "general"
	ChatModeCodeAssistant = "code-assistant"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	TopK      int    `json:"top_k,omitempty"`
}

type wsRequest struct {
	chatRequest
	Mode string `json:"mode,omitempty"`
}

// Frame is one streamed fragment. The last frame of an answer has an empty
// token and Complete set.
type Frame struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Complete  bool   `json:"complete,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ChatGeneral handles POST /api/chat/general.
func (s *Server) ChatGeneral(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChat(w, r)
	if !ok {
		return
	}
	sid := s.sessions.GetOrCreate(req.SessionID)
	s.streamSSE(w, r, sid, s.assistant.Chat(r.Context(), sid, req.Message))
}

// ChatCodeAssistant handles POST /api/chat/code-assistant.
func (s *Server) ChatCodeAssistant(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChat(w, r)
	if !ok {
		return
	}
	if req.TopK < 0 || req.TopK > MaxTopK {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, fmt.Sprintf("top_k must be between 1 and %d", MaxTopK))
		return
	}
	sid := s.sessions.GetOrCreate(req.SessionID)
	s.streamSSE(w, r, sid, s.assistant.Ask(r.Context(), sid, req.Message, req.TopK))
}

func decodeChat(w http.ResponseWriter, r *http.Request) (chatRequest, bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return req, false
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "message is required")
		return req, false
	}
	return req, true
}

// streamSSE writes each token as a "data:" event and finishes with the
// completion frame. A failed write stops the iterator, so a client that
// disconnects mid-answer leaves no assistant turn in the history.
func (s *Server) streamSSE(w http.ResponseWriter, r *http.Request, sessionID string, tokens iter.Seq[string]) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	send := func(f Frame) error {
		data, err := json.Marshal(f)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
		return nil
	}

	for tok := range tokens {
		if err := send(Frame{Token: tok, SessionID: sessionID}); err != nil {
			logger.FromContext(r.Context()).Info("Stream aborted by client",
				zap.String("session_id", sessionID), zap.Error(err))
			return
		}
	}
	_ = send(Frame{SessionID: sessionID, Complete: true})
}

// ChatWS handles GET /api/chat/ws. Each inbound message is answered with a
// stream of frames; the connection stays open for the next one.
func (s *Server) ChatWS(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("WebSocket read failed", zap.Error(err))
			}
			return
		}

		if strings.TrimSpace(req.Message) == "" {
			if err := conn.WriteJSON(Frame{SessionID: req.SessionID, Complete: true, Error: "message is required"}); err != nil {
				return
			}
			continue
		}

		sid := s.sessions.GetOrCreate(req.SessionID)
		var tokens iter.Seq[string]
		switch req.Mode {
		case ChatModeGeneral:
			tokens = s.assistant.Chat(ctx, sid, req.Message)
		case "", ChatModeCodeAssistant:
			tokens = s.assistant.Ask(ctx, sid, req.Message, req.TopK)
		default:
			if err := conn.WriteJSON(Frame{SessionID: sid, Complete: true, Error: "unknown mode " + req.Mode}); err != nil {
				return
			}
			continue
		}

		for tok := range tokens {
			if err := conn.WriteJSON(Frame{Token: tok, SessionID: sid}); err != nil {
				log.Info("WebSocket closed mid-answer", zap.String("session_id", sid), zap.Error(err))
				return
			}
		}
		if err := conn.WriteJSON(Frame{SessionID: sid, Complete: true}); err != nil {
			return
		}
	}
}
