package presence

import "context"

// Store keeps short-lived online markers for connected users. Markers expire
// on their own, so a crashed instance never leaves users stuck online.
type Store interface {
	// MarkOnline sets the presence marker for a user, refreshing its TTL.
	MarkOnline(ctx context.Context, userID string) error

	// MarkOffline clears the presence marker for a user.
	MarkOffline(ctx context.Context, userID string) error

	// IsOnline reports whether a user currently has a live marker.
	IsOnline(ctx context.Context, userID string) (bool, error)

	// Close closes the store connection.
	Close() error
}
