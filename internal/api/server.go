// Package api exposes the conversational agent over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ashwink/warranty-agent/internal/agent"
	"github.com/ashwink/warranty-agent/internal/buildinfo"
)

// DefaultUserID is the customer record a chat binds to when the client
// does not name one. Matches the demo account shipped in the seed data.
const DefaultUserID = 101

// writeJSON encodes v as JSON to w, logging any errors at debug level.
// Errors here typically mean the client disconnected mid-response.
func writeJSON(w http.ResponseWriter, v any, logger *slog.Logger) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("failed to write JSON response", "error", err)
	}
}

// Server is the HTTP API server.
type Server struct {
	address  string
	port     int
	driver   *agent.Driver
	logger   *slog.Logger
	server   *http.Server
	upgrader websocket.Upgrader
}

// NewServer creates a new API server around a conversation driver.
func NewServer(address string, port int, driver *agent.Driver, logger *slog.Logger) *Server {
	return &Server{
		address: address,
		port:    port,
		driver:  driver,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Handler builds the request mux. Exposed so tests can drive the
// server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/chat", s.handleChat)
	mux.HandleFunc("GET /v1/chat/ws", s.handleChatWS)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /version", s.handleVersion)
	mux.HandleFunc("GET /", s.handleRoot)

	return s.withLogging(mux)
}

// Start begins serving HTTP requests and blocks until the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", s.address, s.port),
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: a turn can run several model round trips,
		// and the websocket endpoint holds its connection open.
	}

	addr := s.address
	if addr == "" {
		addr = "0.0.0.0"
	}
	s.logger.Info("starting API server", "address", addr, "port", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{
		"name":    "warrantyd",
		"version": buildinfo.Version,
		"status":  "ok",
	}, s.logger)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "healthy"}, s.logger)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, buildinfo.Info(), s.logger)
}

// ChatRequest is a single conversational turn. SessionID is optional;
// omitting it starts a fresh session. UserID binds the session to a
// customer record on first contact and is ignored afterwards.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	UserID    int    `json:"user_id,omitempty"`
	Prompt    string `json:"prompt"`
}

// ChatResponse carries the assistant's reply and the session to quote
// back on the next turn.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Prompt == "" {
		s.errorResponse(w, http.StatusBadRequest, "prompt is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	userID := req.UserID
	if userID == 0 {
		userID = DefaultUserID
	}

	reply := s.driver.RunTurn(r.Context(), sessionID, userID, req.Prompt)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ChatResponse{SessionID: sessionID, Reply: reply}, s.logger)
}

// wsFrame is one websocket exchange: the client sends {"prompt": ...}
// and receives {"reply": ...}. All frames on a connection share one
// session, so the conversation accumulates like the REST flow does.
type wsFrame struct {
	Prompt string `json:"prompt,omitempty"`
	Reply  string `json:"reply,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	userID := DefaultUserID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		var id int
		if _, err := fmt.Sscanf(raw, "%d", &id); err == nil && id > 0 {
			userID = id
		}
	}

	s.logger.Info("websocket session opened", "session_id", sessionID, "user_id", userID)
	conn.SetReadLimit(1 << 20)

	for {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		if frame.Prompt == "" {
			if err := conn.WriteJSON(wsFrame{Error: "prompt is required"}); err != nil {
				return
			}
			continue
		}

		reply := s.driver.RunTurn(r.Context(), sessionID, userID, frame.Prompt)
		if err := conn.WriteJSON(wsFrame{Reply: reply}); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	writeJSON(w, map[string]any{
		"error": map[string]any{
			"message": message,
			"code":    code,
		},
	}, s.logger)
}
