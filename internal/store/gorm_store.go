package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aura-events/concierge-service/internal/database"
	"github.com/aura-events/concierge-service/internal/domain"
)

// ErrProfileNotFound is returned when a user has no attendee profile.
var ErrProfileNotFound = errors.New("attendee profile not found")

// GormStore implements SessionStore, ActivityStore and ProfileStore on a
// GORM-managed database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := database.AutoMigrate(db,
		&domain.ChatSession{},
		&domain.ChatMessage{},
		&domain.UserActivity{},
		&domain.AttendeeProfile{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate chat models: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) GetOrCreateSession(ctx context.Context, userID string, day time.Time) (*domain.ChatSession, error) {
	key := DayKey(userID, day)

	var session domain.ChatSession
	err := s.db.WithContext(ctx).Where("session_id = ?", key).First(&session).Error
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up session %s: %w", key, err)
	}

	session = domain.ChatSession{
		UserID:       userID,
		SessionID:    key,
		LastActivity: time.Now(),
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		// Lost a create race: the row exists now, read it back.
		var existing domain.ChatSession
		if lookupErr := s.db.WithContext(ctx).Where("session_id = ?", key).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("failed to create session %s: %w", key, err)
	}
	return &session, nil
}

func (s *GormStore) AppendMessage(ctx context.Context, sessionID uint, messageType, content string, metadata domain.JSONMap) error {
	msg := domain.ChatMessage{
		SessionID:   sessionID,
		MessageType: messageType,
		Content:     content,
		Metadata:    metadata,
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("failed to append message: %w", err)
		}
		// last_activity is monotonically non-decreasing.
		if err := tx.Model(&domain.ChatSession{}).
			Where("id = ? AND last_activity < ?", sessionID, msg.Timestamp).
			Update("last_activity", msg.Timestamp).Error; err != nil {
			return fmt.Errorf("failed to update session activity: %w", err)
		}
		return nil
	})
}

func (s *GormStore) MessageCount(ctx context.Context, sessionID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

func (s *GormStore) ActiveSessionCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.ChatSession{}).
		Where("is_active = ?", true).Count(&count).Error
	return count, err
}

func (s *GormStore) AppendActivity(ctx context.Context, userID, activityType string, data domain.JSONMap) error {
	activity := domain.UserActivity{
		UserID:       userID,
		ActivityType: activityType,
		ActivityData: data,
	}
	if err := s.db.WithContext(ctx).Create(&activity).Error; err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

func (s *GormStore) FindProfile(ctx context.Context, userID string) (*domain.AttendeeProfile, error) {
	var profile domain.AttendeeProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile for %s: %w", userID, err)
	}
	return &profile, nil
}

// TouchLastLogin records the user's latest login on the profile.
func (s *GormStore) TouchLastLogin(ctx context.Context, userID string) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&domain.AttendeeProfile{}).
		Where("user_id = ?", userID).
		Update("last_login", &now).Error
}
