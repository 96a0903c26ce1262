package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lalmajed/camera-health-digital-twin/internal/agent"
	"github.com/lalmajed/camera-health-digital-twin/internal/memory"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development
		return true
	},
}

// ChatHandler upgrades to WebSocket and answers questions over the socket.
// One connection is one session; each inbound frame is a question and each
// outbound frame is the full answer.
type ChatHandler struct {
	agent    *agent.Agent
	sessions *agent.SessionManager
	store    memory.Store
}

// NewChatHandler creates a WebSocket chat handler.
func NewChatHandler(a *agent.Agent, sessions *agent.SessionManager, store memory.Store) *ChatHandler {
	return &ChatHandler{agent: a, sessions: sessions, store: store}
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	*agent.Answer
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

// ServeHTTP handles the HTTP request and upgrades to WebSocket.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = "anonymous"
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Chat] Failed to upgrade connection: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.sessions.CreateSession(r.Context(), userID)
	if err != nil {
		log.Printf("[Chat] Failed to create session: %v", err)
		return
	}
	defer h.sessions.DeleteSession(r.Context(), session.ID)

	log.Printf("[Chat] Client connected (session: %s, user: %s)", session.ID, userID)

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Chat] Read error: %v", err)
			}
			return
		}
		if req.Question == "" {
			h.writeJSON(conn, chatResponse{SessionID: session.ID, Error: "question is required"})
			continue
		}

		session.AddTurn("user", req.Question)
		h.persistTurn(r, session.ID, userID, "user", req.Question)

		answer, err := h.agent.Ask(r.Context(), req.Question)
		if err != nil {
			h.writeJSON(conn, chatResponse{SessionID: session.ID, Error: err.Error()})
			continue
		}

		session.AddTurn("assistant", answer.Narrative)
		h.persistTurn(r, session.ID, userID, "assistant", answer.Narrative)

		h.writeJSON(conn, chatResponse{Answer: answer, SessionID: session.ID})
	}
}

func (h *ChatHandler) persistTurn(r *http.Request, sessionID, userID, role, content string) {
	if h.store == nil {
		return
	}
	turn := memory.Turn{
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := h.store.AppendTurn(r.Context(), turn); err != nil {
		log.Printf("[Chat] Failed to persist %s turn: %v", role, err)
	}
}

func (h *ChatHandler) writeJSON(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("[Chat] Write error: %v", err)
	}
}
