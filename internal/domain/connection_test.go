package domain

import (
	"testing"
	"time"
)

func TestConnection_Lifecycle(t *testing.T) {
	c := NewConnection("conn-1")

	if c.IsAuthenticated() {
		t.Error("new connection should not be authenticated")
	}
	if !c.IsAlive() {
		t.Error("new connection should be alive")
	}
	if c.GroupName() != "" {
		t.Errorf("anonymous connection should have no group, got %q", c.GroupName())
	}

	c.Authenticate("u1", "alice", "alice@example.com")

	if !c.IsAuthenticated() {
		t.Error("connection should be authenticated")
	}
	if got := c.UserID(); got != "u1" {
		t.Errorf("UserID() = %q, want u1", got)
	}
	if got := c.GroupName(); got != "user_u1" {
		t.Errorf("GroupName() = %q, want user_u1", got)
	}

	c.MarkClosed()
	if c.IsAlive() {
		t.Error("closed connection should not be alive")
	}
}

func TestConnection_ActivityTimestampAdvances(t *testing.T) {
	c := NewConnection("conn-1")
	before := c.LastActiveAt()

	time.Sleep(5 * time.Millisecond)
	c.UpdateActivity()

	if !c.LastActiveAt().After(before) {
		t.Error("UpdateActivity should advance last-activity timestamp")
	}
}
