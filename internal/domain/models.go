package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Persisted chat message types.
const (
	MessageTypeUser           = "user"
	MessageTypeBot            = "bot"
	MessageTypeSystem         = "system"
	MessageTypeWelcome        = "welcome"
	MessageTypeRecommendation = "recommendation"
	MessageTypeAlert          = "alert"
)

// Networking preferences on an attendee profile.
const (
	NetworkingOpen      = "open"
	NetworkingSelective = "selective"
	NetworkingMinimal   = "minimal"
)

// ChatSession is a logical conversation thread for a user. At most one
// active session exists per user per day key.
type ChatSession struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       string    `gorm:"index;size:64;not null"`
	SessionID    string    `gorm:"uniqueIndex;size:100;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	LastActivity time.Time
	IsActive     bool `gorm:"default:true"`
}

// ChatMessage belongs to exactly one ChatSession. Append-only; rows are
// never mutated or reordered after creation.
type ChatMessage struct {
	ID          uint   `gorm:"primaryKey"`
	SessionID   uint   `gorm:"index;not null"`
	MessageType string `gorm:"size:20;default:user"`
	Content     string `gorm:"type:text"`
	Metadata    JSONMap
	Timestamp   time.Time `gorm:"autoCreateTime;index"`
}

// UserActivity is the append-only audit trail. It belongs to a user, not a
// session, and is never read back by the connection handler.
type UserActivity struct {
	ID           uint    `gorm:"primaryKey"`
	UserID       string  `gorm:"index;size:64;not null"`
	ActivityType string  `gorm:"size:50"`
	ActivityData JSONMap `gorm:"not null"`
	Timestamp    time.Time `gorm:"autoCreateTime;index"`
}

// AttendeeProfile holds the registration profile consulted for welcome
// payloads, responses and feed personalisation.
type AttendeeProfile struct {
	ID                   uint   `gorm:"primaryKey"`
	UserID               string `gorm:"uniqueIndex;size:64;not null"`
	DisplayName          string `gorm:"size:200"`
	JobTitle             string `gorm:"size:200"`
	Company              string `gorm:"size:200"`
	Interests            string `gorm:"type:text"` // comma-separated
	NetworkingPreference string `gorm:"size:20;default:open"`
	FirstTimeAttendee    bool   `gorm:"default:true"`
	RegistrationDate     time.Time `gorm:"autoCreateTime"`
	LastLogin            *time.Time
}

// JSONMap stores structured payloads as a JSON column that works across
// PostgreSQL, MySQL and SQLite.
type JSONMap map[string]interface{}

// Scan implements the sql.Scanner interface for reading from the database.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("JSONMap: unsupported scan type")
	}
}

// Value implements the driver.Valuer interface for writing to the database.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (JSONMap) GormDataType() string {
	return "text"
}
