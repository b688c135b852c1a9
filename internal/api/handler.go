package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/cymond/educhat/internal/character"
	"github.com/cymond/educhat/internal/engine"
	"github.com/cymond/educhat/internal/memory"
)

// ChatEngine runs one conversation turn.
type ChatEngine interface {
	ProcessTurn(ctx context.Context, characterName, userID, message string) (*engine.TurnResult, error)
}

// MemoryLister reads a pair's full memory set without touching access
// counters.
type MemoryLister interface {
	AllMemories(ctx context.Context, characterName, userID string) ([]*memory.Record, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	engine   ChatEngine
	registry *character.Registry
	states   engine.StateStore
	memories MemoryLister
	logger   *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(eng ChatEngine, registry *character.Registry, states engine.StateStore, memories MemoryLister, logger *zap.Logger) *Handler {
	return &Handler{
		engine:   eng,
		registry: registry,
		states:   states,
		memories: memories,
		logger:   logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)
		r.Get("/characters", h.listCharacters)
		r.Get("/characters/{name}", h.getCharacter)
		r.Get("/characters/{name}/state", h.getCharacterState)
		r.Post("/chat", h.chat)
		r.Get("/memories", h.listMemories)
		r.Get("/memories/summary", h.memorySummary)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "educhat"})
}

func (h *Handler) listCharacters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.List())
}

func (h *Handler) getCharacter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := h.registry.Get(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "character not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) getCharacterState(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}
	if _, err := h.registry.Get(name); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "character not found"})
		return
	}

	state, rel, err := h.states.LoadState(r.Context(), name, userID)
	if err != nil {
		h.logger.Error("load state failed", zap.String("character", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "load state failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"character":    name,
		"user_id":      userID,
		"state":        state,
		"relationship": rel,
	})
}

type chatRequest struct {
	Character string `json:"character"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Character == "" || req.UserID == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "character, user_id and message are required"})
		return
	}

	result, err := h.engine.ProcessTurn(r.Context(), req.Character, req.UserID, req.Message)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, character.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// pairParams pulls the character/user pair from the query string.
func (h *Handler) pairParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	name := r.URL.Query().Get("character")
	userID := r.URL.Query().Get("user_id")
	if name == "" || userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "character and user_id are required"})
		return "", "", false
	}
	return name, userID, true
}

func (h *Handler) listMemories(w http.ResponseWriter, r *http.Request) {
	name, userID, ok := h.pairParams(w, r)
	if !ok {
		return
	}
	records, err := h.memories.AllMemories(r.Context(), name, userID)
	if err != nil {
		h.logger.Error("list memories failed", zap.String("character", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list memories failed"})
		return
	}
	if records == nil {
		records = []*memory.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) memorySummary(w http.ResponseWriter, r *http.Request) {
	name, userID, ok := h.pairParams(w, r)
	if !ok {
		return
	}
	records, err := h.memories.AllMemories(r.Context(), name, userID)
	if err != nil {
		h.logger.Error("summarize memories failed", zap.String("character", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "summarize memories failed"})
		return
	}
	writeJSON(w, http.StatusOK, memory.Summarize(records))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
