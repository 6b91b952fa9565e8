package domain

// WebSocket frame types from client.
const (
	FrameTypeMessage = "message"
	FrameTypeGetFeed = "get_feed"
	FrameTypeAction  = "action"
)

// WebSocket frame types to client.
const (
	FrameTypeWelcome      = "welcome"
	FrameTypeBotResponse  = "bot_response"
	FrameTypeFeedUpdate   = "feed_update"
	FrameTypeNotification = "notification"
	FrameTypeError        = "error"
)

// Activity types recorded on the audit trail.
const (
	ActivityConnected    = "chat_connected"
	ActivityDisconnected = "chat_disconnected"
	ActivityUserMessage  = "user_message"
	ActivityFeedAction   = "feed_action"
)

// BaseFrame is the base structure for all inbound WebSocket frames.
type BaseFrame struct {
	Type string `json:"type"`
}

// Client -> Server frames

type MessageFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ActionFrame struct {
	Type     string `json:"type"`
	Action   string `json:"action"`
	ItemType string `json:"item_type"`
}

// Server -> Client frames

type WelcomeFrame struct {
	Type     string     `json:"type"`
	Message  string     `json:"message"`
	LiveFeed []FeedItem `json:"live_feed"`
	UserInfo *UserInfo  `json:"user_info,omitempty"`
}

type BotResponseFrame struct {
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	LiveFeed  []FeedItem `json:"live_feed"`
	Timestamp string     `json:"timestamp"`
}

type FeedUpdateFrame struct {
	Type     string     `json:"type"`
	LiveFeed []FeedItem `json:"live_feed"`
}

type NotificationFrame struct {
	Type             string `json:"type"`
	Message          string `json:"message"`
	NotificationType string `json:"notification_type"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// UserInfo carries the minimal profile fields shown in the welcome payload.
type UserInfo struct {
	Name      string `json:"name"`
	Company   string `json:"company,omitempty"`
	Interests string `json:"interests,omitempty"`
}

func NewErrorFrame(message string) *ErrorFrame {
	return &ErrorFrame{
		Type:    FrameTypeError,
		Message: message,
	}
}

func NewFeedUpdateFrame(feed []FeedItem) *FeedUpdateFrame {
	return &FeedUpdateFrame{
		Type:     FrameTypeFeedUpdate,
		LiveFeed: feed,
	}
}

func NewNotificationFrame(message, notificationType string) *NotificationFrame {
	if notificationType == "" {
		notificationType = "info"
	}
	return &NotificationFrame{
		Type:             FrameTypeNotification,
		Message:          message,
		NotificationType: notificationType,
	}
}
