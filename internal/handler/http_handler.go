package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/aura-events/concierge-service/internal/auth"
	"github.com/aura-events/concierge-service/internal/concierge"
	"github.com/aura-events/concierge-service/internal/hub"
	"github.com/aura-events/concierge-service/internal/log"
	"github.com/aura-events/concierge-service/internal/presence"
	"github.com/aura-events/concierge-service/internal/service"
	"github.com/aura-events/concierge-service/internal/store"
)

// HTTPHandler serves the non-websocket surface: health checks, the feed
// REST endpoint and the admin notification broadcast.
type HTTPHandler struct {
	hub       *hub.Hub
	service   service.ChatService
	feeds     concierge.FeedGenerator
	validator *auth.Validator
	sessions  store.SessionStore
	presence  presence.Store
}

func NewHTTPHandler(
	h *hub.Hub,
	svc service.ChatService,
	feeds concierge.FeedGenerator,
	validator *auth.Validator,
	sessions store.SessionStore,
	pres presence.Store,
) *HTTPHandler {
	return &HTTPHandler{
		hub:       h,
		service:   svc,
		feeds:     feeds,
		validator: validator,
		sessions:  sessions,
		presence:  pres,
	}
}

func (h *HTTPHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/feed", h.GetFeed).Methods(http.MethodGet)
	r.HandleFunc("/api/notify", h.Notify).Methods(http.MethodPost)
}

type serviceStatus struct {
	Status         string   `json:"status"`
	ResponseTimeMS *float64 `json:"response_time_ms"`
}

// Health probes the database and the presence cache and reports live
// connection counts.
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dbStatus := serviceStatus{Status: "ok"}
	dbStart := time.Now()
	activeSessions, err := h.sessions.ActiveSessionCount(ctx)
	if err != nil {
		dbStatus.Status = "error: " + err.Error()
	} else {
		ms := float64(time.Since(dbStart).Microseconds()) / 1000
		dbStatus.ResponseTimeMS = &ms
	}

	cacheStatus := serviceStatus{Status: "ok"}
	cacheStart := time.Now()
	if _, err := h.presence.IsOnline(ctx, "health_check"); err != nil {
		cacheStatus.Status = "error: " + err.Error()
	} else {
		ms := float64(time.Since(cacheStart).Microseconds()) / 1000
		cacheStatus.ResponseTimeMS = &ms
	}

	overall := "healthy"
	if dbStatus.Status != "ok" || cacheStatus.Status != "ok" {
		overall = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": map[string]interface{}{
			"database": dbStatus,
			"cache":    cacheStatus,
		},
		"metrics": map[string]interface{}{
			"active_sessions":  activeSessions,
			"live_connections": h.hub.ClientCount(),
		},
	})
}

// GetFeed returns the live feed for the authenticated caller.
func (h *HTTPHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing token"})
		return
	}

	identity, err := h.validator.ValidateToken(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		return
	}

	feed := h.feeds.Feed(r.Context(), identity)
	writeJSON(w, http.StatusOK, map[string]interface{}{"live_feed": feed})
}

type notifyRequest struct {
	UserID           string `json:"user_id"`
	Message          string `json:"message"`
	NotificationType string `json:"notification_type"`
}

// Notify broadcasts a notification frame to every connection of a user.
func (h *HTTPHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id and message are required"})
		return
	}

	if err := h.service.NotifyUser(context.Background(), req.UserID, req.Message, req.NotificationType); err != nil {
		l := log.L()
		l.Error().Str(log.FieldUserID, req.UserID).Err(err).Msg("notification broadcast failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "broadcast failed"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		l := log.L()
		l.Error().Err(err).Msg("failed to encode response")
	}
}
