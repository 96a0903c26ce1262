// Package server exposes the question-answering agent over an HTTP API:
// an ask endpoint, session management, a WebSocket chat channel, and the
// usual health and metrics surfaces.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lalmajed/camera-health-digital-twin/config"
	"github.com/lalmajed/camera-health-digital-twin/internal/agent"
	"github.com/lalmajed/camera-health-digital-twin/internal/memory"
	"github.com/lalmajed/camera-health-digital-twin/internal/twin"
)

// Server is the agent API server.
type Server struct {
	agent      *agent.Agent
	sessions   *agent.SessionManager
	store      memory.Store
	cfg        *config.Config
	httpServer *http.Server
}

// NewServer wires the agent pipeline behind the HTTP API.
func NewServer(a *agent.Agent, sessions *agent.SessionManager, store memory.Store, cfg *config.Config) *Server {
	return &Server{
		agent:    a,
		sessions: sessions,
		store:    store,
		cfg:      cfg,
	}
}

// Handler builds the full route tree with CORS and tracing middleware.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/ask", s.handleAsk).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/capabilities", s.handleGetCapabilities).Methods("GET")

	chatHandler := NewChatHandler(s.agent, s.sessions, s.store)
	router.HandleFunc("/api/v1/chat/ws", chatHandler.ServeHTTP)

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.Handle(s.cfg.Metrics.Path, promhttp.Handler()).Methods("GET")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:5174"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-User-ID"},
		AllowCredentials: true,
	})

	handler := corsHandler.Handler(router)
	if s.cfg.Tracing.Enabled {
		handler = otelhttp.NewHandler(handler, "agent-api")
	}
	return handler
}

// Start serves the API until Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	if s.cfg.HTTP.TLSCertFile != "" && s.cfg.HTTP.TLSKeyFile != "" {
		s.httpServer.TLSConfig = hardenedTLSConfig()
		log.Printf("[Server] Listening on %s (TLS)", s.httpServer.Addr)
		return s.httpServer.ListenAndServeTLS(s.cfg.HTTP.TLSCertFile, s.cfg.HTTP.TLSKeyFile)
	}

	log.Printf("[Server] Listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests within the given timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := contextWithTimeout(timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

type askResponse struct {
	*agent.Answer
	SessionID   string `json:"session_id"`
	QueryTimeMs int64  `json:"query_time_ms"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Question == "" {
		s.respondError(w, http.StatusBadRequest, "Question is required")
		return
	}

	session := s.resolveSession(r, req.SessionID)

	session.AddTurn("user", req.Question)
	s.persistTurn(r, session, "user", req.Question)

	start := time.Now()
	answer, err := s.agent.Ask(r.Context(), req.Question)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Question failed: %v", err))
		return
	}

	session.AddTurn("assistant", answer.Narrative)
	s.persistTurn(r, session, "assistant", answer.Narrative)

	s.respondJSON(w, http.StatusOK, askResponse{
		Answer:      answer,
		SessionID:   session.ID,
		QueryTimeMs: time.Since(start).Milliseconds(),
	})
}

// resolveSession looks up the requested session, creating one for unknown or
// missing IDs.
func (s *Server) resolveSession(r *http.Request, sessionID string) *agent.Session {
	if sessionID != "" {
		if session, err := s.sessions.GetSession(r.Context(), sessionID); err == nil {
			return session
		}
	}
	session, _ := s.sessions.CreateSession(r.Context(), userIDFrom(r))
	return session
}

func (s *Server) persistTurn(r *http.Request, session *agent.Session, role, content string) {
	if s.store == nil {
		return
	}
	turn := memory.Turn{
		SessionID: session.ID,
		UserID:    session.UserID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.store.AppendTurn(r.Context(), turn); err != nil {
		log.Printf("[Server] Failed to persist %s turn: %v", role, err)
	}
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.ListUserSessions(r.Context(), userIDFrom(r))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.CreateSession(r.Context(), userIDFrom(r))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	s.respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "Session not found")
		return
	}

	s.respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.sessions.DeleteSession(r.Context(), sessionID); err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCapabilities(w http.ResponseWriter, r *http.Request) {
	tools := make([]map[string]interface{}, 0, 6)
	for _, name := range twin.Tools() {
		tools = append(tools, map[string]interface{}{
			"name":   name,
			"params": twin.RequiredParams(name),
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"version": "1.0.0",
		"tools":   tools,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func userIDFrom(r *http.Request) string {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = "anonymous"
	}
	return userID
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}
