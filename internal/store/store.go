package store

import (
	"context"
	"time"

	"github.com/aura-events/concierge-service/internal/domain"
)

// SessionStore persists chat sessions and their messages. Messages are
// append-only; a message cannot exist without a parent session.
type SessionStore interface {
	// GetOrCreateSession looks up the user's session for the given day key,
	// creating it when absent.
	GetOrCreateSession(ctx context.Context, userID string, day time.Time) (*domain.ChatSession, error)

	// AppendMessage appends a message to a session and advances the
	// session's last-activity timestamp.
	AppendMessage(ctx context.Context, sessionID uint, messageType, content string, metadata domain.JSONMap) error

	// MessageCount returns the number of messages in a session.
	MessageCount(ctx context.Context, sessionID uint) (int64, error)

	// ActiveSessionCount returns the number of sessions marked active.
	ActiveSessionCount(ctx context.Context) (int64, error)
}

// ActivityStore persists the append-only user activity trail.
type ActivityStore interface {
	AppendActivity(ctx context.Context, userID, activityType string, data domain.JSONMap) error
}

// ProfileStore looks up attendee profiles.
type ProfileStore interface {
	// FindProfile returns the profile for a user, or ErrProfileNotFound.
	FindProfile(ctx context.Context, userID string) (*domain.AttendeeProfile, error)

	// TouchLastLogin stamps the profile's last-login time.
	TouchLastLogin(ctx context.Context, userID string) error
}

// DayKey derives the per-day session identifier from a user id and a date.
// One active session per user per day; the scheme is a documented policy,
// not a security boundary.
func DayKey(userID string, day time.Time) string {
	return "session_" + userID + "_" + day.Format("2006-01-02")
}
