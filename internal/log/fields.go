package log

const (
	// Connection
	FieldConnectionID = "connection_id"
	FieldFrameType    = "frame_type"
	FieldCloseCode    = "close_code"

	// Actor
	FieldUserID   = "user_id"
	FieldUsername = "username"

	// Service
	FieldService = "service"

	// Activity trail
	FieldActivity = "activity"
	FieldGroup    = "group"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
