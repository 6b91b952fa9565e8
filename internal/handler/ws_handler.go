package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aura-events/concierge-service/internal/auth"
	"github.com/aura-events/concierge-service/internal/config"
	"github.com/aura-events/concierge-service/internal/domain"
	"github.com/aura-events/concierge-service/internal/hub"
	"github.com/aura-events/concierge-service/internal/log"
	"github.com/aura-events/concierge-service/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub       *hub.Hub
	service   service.ChatService
	validator *auth.Validator
	wsCfg     config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.ChatService, validator *auth.Validator, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:       h,
		service:   svc,
		validator: validator,
		wsCfg:     wsCfg,
	}
}

// HandleWebSocket upgrades the transport and opens the connection. Callers
// without a valid token are still accepted; they just get no group, welcome
// or activity trail.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := log.L()
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)

	if token := bearerToken(r); token != "" {
		identity, err := h.validator.ValidateToken(token)
		if err != nil {
			l := log.L()
			l.Warn().Str(log.FieldConnectionID, client.ID).Err(err).Msg("rejected connection token")
		} else {
			client.State.Authenticate(identity.UserID, identity.Username, identity.Email)
			l := log.L()
			l.Info().
				Str(log.FieldConnectionID, client.ID).
				Str(log.FieldUserID, identity.UserID).
				Str(log.FieldUsername, identity.Username).
				Msg("connection authenticated")
		}
	}

	connCtx := log.WithLogger(context.Background(),
		log.L().With().Str(log.FieldConnectionID, client.ID).Logger())

	h.hub.Register(client)

	go client.WritePump()

	// The welcome is queued before the read pump starts, so no inbound frame
	// can be answered ahead of it.
	h.service.HandleConnect(connCtx, client)

	go client.ReadPump(h.handleFrame, func(c *hub.Client) {
		h.service.HandleDisconnect(connCtx, c)
	})
}

func (h *WSHandler) handleFrame(client *hub.Client, message []byte) {
	ctx := log.WithLogger(context.Background(),
		log.L().With().Str(log.FieldConnectionID, client.ID).Logger())
	l := log.Ctx(ctx)

	var base domain.BaseFrame
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorFrame("Invalid message format"))
		return
	}

	switch base.Type {
	case domain.FrameTypeMessage:
		var frame domain.MessageFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			client.SendMessage(domain.NewErrorFrame("Invalid message format"))
			return
		}
		if err := h.service.HandleMessage(ctx, client, frame.Message); err != nil {
			l.Error().Err(err).Msg("message handling failed")
		}

	case domain.FrameTypeGetFeed:
		if err := h.service.HandleFeedRequest(ctx, client); err != nil {
			l.Error().Err(err).Msg("feed request failed")
		}

	case domain.FrameTypeAction:
		var frame domain.ActionFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			client.SendMessage(domain.NewErrorFrame("Invalid message format"))
			return
		}
		if err := h.service.HandleAction(ctx, client, frame.Action, frame.ItemType); err != nil {
			l.Error().Err(err).Msg("action handling failed")
		}

	default:
		l.Warn().Str(log.FieldFrameType, base.Type).Msg("unknown frame type")
		client.SendMessage(domain.NewErrorFrame("Invalid message format"))
	}
}

// bearerToken pulls the auth token from the Authorization header or the
// "token" query parameter (browsers cannot set headers on websockets).
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
