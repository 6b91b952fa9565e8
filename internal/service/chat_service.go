package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aura-events/concierge-service/internal/activity"
	"github.com/aura-events/concierge-service/internal/concierge"
	"github.com/aura-events/concierge-service/internal/config"
	"github.com/aura-events/concierge-service/internal/domain"
	"github.com/aura-events/concierge-service/internal/hub"
	"github.com/aura-events/concierge-service/internal/log"
	"github.com/aura-events/concierge-service/internal/presence"
	"github.com/aura-events/concierge-service/internal/store"
)

const fallbackWelcomeText = "Welcome to AURA! Your concierge is warming up - ask me about sessions, speakers or the schedule."

const fallbackReplyText = "Sorry, I'm having trouble answering right now. Please try again in a moment."

type chatService struct {
	hub      *hub.Hub
	engine   concierge.ResponseEngine
	feeds    concierge.FeedGenerator
	profiles store.ProfileStore
	presence presence.Store
	recorder activity.Recorder
	feedCfg  config.FeedConfig
}

func NewChatService(
	h *hub.Hub,
	engine concierge.ResponseEngine,
	feeds concierge.FeedGenerator,
	profiles store.ProfileStore,
	pres presence.Store,
	recorder activity.Recorder,
	feedCfg config.FeedConfig,
) ChatService {
	return &chatService{
		hub:      h,
		engine:   engine,
		feeds:    feeds,
		profiles: profiles,
		presence: pres,
		recorder: recorder,
		feedCfg:  feedCfg,
	}
}

// HandleConnect runs the Connecting -> Open transition. For authenticated
// callers it joins the user group, records the connection, marks presence
// and sends the welcome payload. Side-channel failures never abort the
// handshake: any welcome-construction error degrades to the fixed fallback
// welcome and the connection stays open.
func (s *chatService) HandleConnect(ctx context.Context, c *hub.Client) {
	if !c.State.IsAuthenticated() {
		return
	}

	identity := c.State.Identity()

	s.hub.Join(c.State.GroupName(), c)

	s.recorder.Record(identity.UserID, domain.ActivityConnected, domain.JSONMap{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})

	if err := s.presence.MarkOnline(ctx, identity.UserID); err != nil {
		l := log.Ctx(ctx)
		l.Error().Str(log.FieldUserID, identity.UserID).Err(err).Msg("failed to set presence marker")
	}

	welcome := s.buildWelcome(ctx, identity)
	if err := c.SendMessage(welcome); err != nil {
		l := log.Ctx(ctx)
		l.Error().Str(log.FieldConnectionID, c.ID).Err(err).Msg("failed to send welcome frame")
	}

	go s.feedLoop(c)
}

// buildWelcome assembles the welcome payload. It returns the generic
// fallback (fixed text plus one placeholder feed item) instead of failing.
func (s *chatService) buildWelcome(ctx context.Context, identity *domain.Identity) (frame *domain.WelcomeFrame) {
	defer func() {
		if r := recover(); r != nil {
			l := log.Ctx(ctx)
			l.Error().Str(log.FieldUserID, identity.UserID).Interface("panic", r).Msg("welcome construction panicked, sending fallback")
			frame = s.fallbackWelcome(identity)
		}
	}()

	reply, err := s.engine.Reply(ctx, identity, "")
	if err != nil || strings.TrimSpace(reply) == "" {
		l := log.Ctx(ctx)
		l.Warn().Str(log.FieldUserID, identity.UserID).Err(err).Msg("welcome reply unavailable, sending fallback")
		return s.fallbackWelcome(identity)
	}

	feed := s.feeds.Feed(ctx, identity)
	if len(feed) == 0 {
		return s.fallbackWelcome(identity)
	}

	return &domain.WelcomeFrame{
		Type:     domain.FrameTypeWelcome,
		Message:  reply,
		LiveFeed: feed,
		UserInfo: s.userInfo(ctx, identity),
	}
}

func (s *chatService) fallbackWelcome(identity *domain.Identity) *domain.WelcomeFrame {
	name := identity.Username
	if name == "" {
		name = identity.UserID
	}
	return &domain.WelcomeFrame{
		Type:    domain.FrameTypeWelcome,
		Message: fallbackWelcomeText,
		LiveFeed: []domain.FeedItem{{
			Type:     "announcement",
			Title:    "Explore the event",
			Content:  "Browse today's programme while I get your personalised feed ready.",
			Action:   "View Schedule",
			Priority: domain.PriorityMedium,
		}},
		UserInfo: &domain.UserInfo{Name: name},
	}
}

func (s *chatService) userInfo(ctx context.Context, identity *domain.Identity) *domain.UserInfo {
	profile, err := s.profiles.FindProfile(ctx, identity.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrProfileNotFound) {
			l := log.Ctx(ctx)
			l.Warn().Str(log.FieldUserID, identity.UserID).Err(err).Msg("profile lookup failed for welcome payload")
		}
		name := identity.Username
		if name == "" {
			name = identity.UserID
		}
		return &domain.UserInfo{Name: name}
	}
	return &domain.UserInfo{
		Name:      profile.DisplayName,
		Company:   profile.Company,
		Interests: profile.Interests,
	}
}

// HandleMessage processes a "message" frame. Empty or whitespace-only text
// is a no-op: no reply, no activity record.
func (s *chatService) HandleMessage(ctx context.Context, c *hub.Client, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if userID := c.State.UserID(); userID != "" {
		s.recorder.Record(userID, domain.ActivityUserMessage, domain.JSONMap{
			"message": text,
		})
	}

	reply, err := s.engine.Reply(ctx, c.State.Identity(), text)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Str(log.FieldConnectionID, c.ID).Err(err).Msg("response engine failed, sending fallback reply")
		reply = fallbackReplyText
	}

	feed := s.feeds.Feed(ctx, c.State.Identity())

	return c.SendMessage(&domain.BotResponseFrame{
		Type:      domain.FrameTypeBotResponse,
		Message:   reply,
		LiveFeed:  feed,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleFeedRequest recomputes and pushes the live feed. No activity record
// and no response engine involvement.
func (s *chatService) HandleFeedRequest(ctx context.Context, c *hub.Client) error {
	feed := s.feeds.Feed(ctx, c.State.Identity())
	return c.SendMessage(domain.NewFeedUpdateFrame(feed))
}

// HandleAction records the feed action, then re-enters the message path
// with the action label so an action is indistinguishable downstream from a
// typed message.
func (s *chatService) HandleAction(ctx context.Context, c *hub.Client, action, itemType string) error {
	if userID := c.State.UserID(); userID != "" {
		s.recorder.Record(userID, domain.ActivityFeedAction, domain.JSONMap{
			"action":    action,
			"item_type": itemType,
		})
	}

	return s.HandleMessage(ctx, c, action)
}

// HandleDisconnect runs teardown after the hub has deregistered the client:
// presence cleared, disconnect recorded with the close reason code. The
// liveness flag is already false, which stops the feed loop.
func (s *chatService) HandleDisconnect(ctx context.Context, c *hub.Client) {
	if !c.State.IsAuthenticated() {
		return
	}

	userID := c.State.UserID()

	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldUserID, userID).
		Int(log.FieldCloseCode, c.CloseCode()).
		Msg("chat connection closed")

	if err := s.presence.MarkOffline(ctx, userID); err != nil {
		l := log.Ctx(ctx)
		l.Error().Str(log.FieldUserID, userID).Err(err).Msg("failed to clear presence marker")
	}

	s.recorder.Record(userID, domain.ActivityDisconnected, domain.JSONMap{
		"close_code": c.CloseCode(),
	})
}

func (s *chatService) NotifyUser(ctx context.Context, userID, message, notificationType string) error {
	group := "user_" + userID
	return s.hub.Broadcast(group, domain.NewNotificationFrame(message, notificationType))
}

// feedLoop periodically recomputes and pushes the live feed for one
// connection. It starts after a short delay, checks liveness before every
// push and terminates silently once the connection closes. Feed errors are
// skipped for that cycle, never propagated.
func (s *chatService) feedLoop(c *hub.Client) {
	identity := c.State.Identity()

	timer := time.NewTimer(s.feedCfg.InitialDelay)
	defer timer.Stop()
	<-timer.C

	if !c.State.IsAlive() {
		return
	}
	s.pushFeedUpdate(c, identity)

	ticker := time.NewTicker(s.feedCfg.UpdateInterval)
	defer ticker.Stop()

	for range ticker.C {
		if !c.State.IsAlive() {
			return
		}
		s.pushFeedUpdate(c, identity)
	}
}

func (s *chatService) pushFeedUpdate(c *hub.Client, identity *domain.Identity) {
	defer func() {
		if r := recover(); r != nil {
			l := log.L()
			l.Error().Str(log.FieldConnectionID, c.ID).Interface("panic", r).Msg("feed update cycle skipped")
		}
	}()

	feed := s.feeds.Feed(context.Background(), identity)
	if err := c.SendMessage(domain.NewFeedUpdateFrame(feed)); err != nil {
		l := log.L()
		l.Warn().Str(log.FieldConnectionID, c.ID).Err(err).Msg("failed to push feed update")
	}
}
