package service

import (
	"context"

	"github.com/aura-events/concierge-service/internal/hub"
)

// ChatService owns the lifecycle of one client connection: handshake and
// welcome, inbound frame handling, the periodic feed push, and teardown.
type ChatService interface {
	HandleConnect(ctx context.Context, client *hub.Client)
	HandleMessage(ctx context.Context, client *hub.Client, text string) error
	HandleFeedRequest(ctx context.Context, client *hub.Client) error
	HandleAction(ctx context.Context, client *hub.Client, action, itemType string) error
	HandleDisconnect(ctx context.Context, client *hub.Client)

	// NotifyUser delivers an out-of-band notification to every connection
	// in the user's group. Best-effort.
	NotifyUser(ctx context.Context, userID, message, notificationType string) error
}
