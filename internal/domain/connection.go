package domain

import (
	"sync"
	"time"
)

// Identity is the authenticated owner of a connection. Nil identity means
// the caller connected without credentials.
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// Connection holds per-connection state. It never outlives the transport
// link it belongs to.
type Connection struct {
	ID           string
	identity     *Identity
	ConnectedAt  time.Time
	lastActiveAt time.Time
	alive        bool
	mu           sync.RWMutex
}

func NewConnection(id string) *Connection {
	now := time.Now()
	return &Connection{
		ID:           id,
		ConnectedAt:  now,
		lastActiveAt: now,
		alive:        true,
	}
}

// Authenticate attaches the owning user identity.
func (c *Connection) Authenticate(userID, username, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = &Identity{UserID: userID, Username: username, Email: email}
	c.lastActiveAt = time.Now()
}

func (c *Connection) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity != nil
}

// Identity returns the owning identity, or nil for anonymous connections.
func (c *Connection) Identity() *Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

func (c *Connection) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return ""
	}
	return c.identity.UserID
}

// GroupName is the broadcast group key for the owning user.
func (c *Connection) GroupName() string {
	id := c.UserID()
	if id == "" {
		return ""
	}
	return "user_" + id
}

func (c *Connection) UpdateActivity() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActiveAt = time.Now()
}

func (c *Connection) LastActiveAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastActiveAt
}

// MarkClosed flips the liveness flag. The periodic feed task checks this
// before every push and terminates once it is false.
func (c *Connection) MarkClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = false
}

func (c *Connection) IsAlive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.alive
}
