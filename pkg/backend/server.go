// Package backend is a small development stand-in for the hosted Violet
// backend: the three /api endpoints the client consumes, with a SQLite
// memory store and a canned persona responder.
package backend

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/violetrhodes/violet/pkg/chat"
	"github.com/violetrhodes/violet/pkg/memory"
)

type Server struct {
	repo      Repository
	responder *Responder
}

func NewServer(repo Repository, responder *Responder) *Server {
	return &Server{repo: repo, responder: responder}
}

// Routes builds the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsAllowAll)

	r.Get("/api/memory", s.handleGetMemory)
	r.Post("/api/memory", s.handlePostMemory)
	r.Post("/api/chat", s.handleChat)

	return r
}

// corsAllowAll admits the browser frontend from any origin. The dev
// server holds nothing sensitive.
func corsAllowAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	// Absent users get the default record; an empty record is a valid
	// state on the client side.
	mem, _, err := s.repo.GetMemory(r.Context(), userID)
	if err != nil {
		slog.Error("memory read failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "memory read failed")
		return
	}

	writeJSON(w, http.StatusOK, mem)
}

type saveMemoryRequest struct {
	UserID string            `json:"userId"`
	Memory memory.UserMemory `json:"memory"`
}

func (s *Server) handlePostMemory(w http.ResponseWriter, r *http.Request) {
	var req saveMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := s.repo.PutMemory(r.Context(), req.UserID, req.Memory); err != nil {
		slog.Error("memory write failed", "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "memory write failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type chatRequest struct {
	UserID   string       `json:"userId"`
	Messages []chat.Entry `json:"messages"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	mem, found, err := s.repo.GetMemory(r.Context(), req.UserID)
	if err != nil {
		slog.Warn("memory read failed during chat, replying without it",
			"user_id", req.UserID, "error", err)
		mem, found = memory.Default(), false
	}

	payload := s.responder.Reply(req.Messages, mem, found)
	writeJSON(w, http.StatusOK, payload)
}
