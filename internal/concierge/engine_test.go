package concierge

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aura-events/concierge-service/internal/domain"
	"github.com/aura-events/concierge-service/internal/store"
)

type loggedMessage struct {
	messageType string
	content     string
}

type fakeSessions struct {
	session      domain.ChatSession
	logged       []loggedMessage
	messageCount int64
	sessionErr   error
}

func (f *fakeSessions) GetOrCreateSession(_ context.Context, userID string, day time.Time) (*domain.ChatSession, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.session.UserID = userID
	if f.session.ID == 0 {
		f.session.ID = 1
	}
	return &f.session, nil
}

func (f *fakeSessions) AppendMessage(_ context.Context, _ uint, messageType, content string, _ domain.JSONMap) error {
	f.logged = append(f.logged, loggedMessage{messageType: messageType, content: content})
	f.messageCount++
	return nil
}

func (f *fakeSessions) MessageCount(_ context.Context, _ uint) (int64, error) {
	return f.messageCount, nil
}

func (f *fakeSessions) ActiveSessionCount(_ context.Context) (int64, error) {
	return 1, nil
}

type fakeProfiles struct {
	profiles map[string]*domain.AttendeeProfile
	err      error
	touched  []string
	touchErr error
}

func (f *fakeProfiles) FindProfile(_ context.Context, userID string) (*domain.AttendeeProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, store.ErrProfileNotFound
}

func (f *fakeProfiles) TouchLastLogin(_ context.Context, userID string) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched = append(f.touched, userID)
	return nil
}

func testProfile() *domain.AttendeeProfile {
	return &domain.AttendeeProfile{
		UserID:               "u1",
		DisplayName:          "Alice",
		Company:              "Acme",
		Interests:            "ai, design",
		NetworkingPreference: domain.NetworkingOpen,
		FirstTimeAttendee:    true,
	}
}

func newTestEngine(sessions *fakeSessions, profiles *fakeProfiles) *Engine {
	return NewEngine(sessions, profiles, DefaultCatalog())
}

func TestEngine_GuestReply(t *testing.T) {
	e := newTestEngine(&fakeSessions{}, &fakeProfiles{})

	reply, err := e.Reply(context.Background(), nil, "hello")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if !strings.Contains(reply, "log in") {
		t.Errorf("guest reply should invite login, got %q", reply)
	}
}

func TestEngine_OnboardingWhenProfileMissing(t *testing.T) {
	e := newTestEngine(&fakeSessions{}, &fakeProfiles{})

	identity := &domain.Identity{UserID: "u1", Username: "alice"}
	reply, err := e.Reply(context.Background(), identity, "hello")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if !strings.Contains(reply, "alice") || !strings.Contains(reply, "profile") {
		t.Errorf("onboarding reply should mention the user and profile, got %q", reply)
	}
}

func TestEngine_WelcomeOnFirstContact(t *testing.T) {
	sessions := &fakeSessions{}
	profiles := &fakeProfiles{profiles: map[string]*domain.AttendeeProfile{"u1": testProfile()}}
	e := newTestEngine(sessions, profiles)

	identity := &domain.Identity{UserID: "u1", Username: "alice"}
	reply, err := e.Reply(context.Background(), identity, "")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if !strings.Contains(reply, "Alice") {
		t.Errorf("welcome should address the attendee by display name, got %q", reply)
	}
	if !strings.Contains(reply, "first time") {
		t.Errorf("welcome should acknowledge a first-time attendee, got %q", reply)
	}

	if len(sessions.logged) != 1 || sessions.logged[0].messageType != domain.MessageTypeWelcome {
		t.Errorf("welcome should be logged once as welcome type, got %+v", sessions.logged)
	}
}

func TestEngine_OnboardingPersistsUserMessage(t *testing.T) {
	sessions := &fakeSessions{}
	e := newTestEngine(sessions, &fakeProfiles{})

	identity := &domain.Identity{UserID: "u1", Username: "alice"}
	if _, err := e.Reply(context.Background(), identity, "recommend sessions"); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if len(sessions.logged) != 2 {
		t.Fatalf("logged %d messages, want 2: %+v", len(sessions.logged), sessions.logged)
	}
	if sessions.logged[0].messageType != domain.MessageTypeUser || sessions.logged[0].content != "recommend sessions" {
		t.Errorf("first logged message = %+v, want the user's text", sessions.logged[0])
	}
	if sessions.logged[1].messageType != domain.MessageTypeBot {
		t.Errorf("second logged message type = %s, want bot", sessions.logged[1].messageType)
	}
}

func TestEngine_StampsLastLogin(t *testing.T) {
	sessions := &fakeSessions{messageCount: 5}
	profiles := &fakeProfiles{profiles: map[string]*domain.AttendeeProfile{"u1": testProfile()}}
	e := newTestEngine(sessions, profiles)

	if _, err := e.Reply(context.Background(), &domain.Identity{UserID: "u1"}, "hello"); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if len(profiles.touched) != 1 || profiles.touched[0] != "u1" {
		t.Errorf("touched = %v, want one stamp for u1", profiles.touched)
	}
}

func TestEngine_LastLoginStampFailureIsSwallowed(t *testing.T) {
	sessions := &fakeSessions{messageCount: 5}
	profiles := &fakeProfiles{
		profiles: map[string]*domain.AttendeeProfile{"u1": testProfile()},
		touchErr: errors.New("database down"),
	}
	e := newTestEngine(sessions, profiles)

	reply, err := e.Reply(context.Background(), &domain.Identity{UserID: "u1"}, "hello")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply == "" {
		t.Error("reply should still be produced when the login stamp fails")
	}
}

func TestEngine_SessionStoreFailurePropagates(t *testing.T) {
	sessions := &fakeSessions{sessionErr: errors.New("database down")}
	e := newTestEngine(sessions, &fakeProfiles{})

	identity := &domain.Identity{UserID: "u1"}
	if _, err := e.Reply(context.Background(), identity, "hello"); err == nil {
		t.Error("Reply() should surface session store failure to the caller")
	}
}

func TestEngine_IntentDispatch(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"recommendation", "recommend sessions for me", "recommendations"},
		{"schedule", "what's on the agenda today", "schedule"},
		{"speakers", "who are the presenters", "speakers"},
		{"location", "where is the keynote room", "Venue"},
		{"networking", "help me meet people", "Networking"},
		{"appreciation", "thanks, that was great", "welcome"},
		{"fallback", "xyzzy plugh", "not sure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeSessions{messageCount: 5} // past first contact
			profiles := &fakeProfiles{profiles: map[string]*domain.AttendeeProfile{"u1": testProfile()}}
			e := newTestEngine(sessions, profiles)

			identity := &domain.Identity{UserID: "u1"}
			reply, err := e.Reply(context.Background(), identity, tt.message)
			if err != nil {
				t.Fatalf("Reply() error = %v", err)
			}
			if !strings.Contains(reply, tt.want) {
				t.Errorf("Reply(%q) = %q, want substring %q", tt.message, reply, tt.want)
			}

			// One user message and one bot reply logged, in that order.
			if len(sessions.logged) != 2 {
				t.Fatalf("logged %d messages, want 2: %+v", len(sessions.logged), sessions.logged)
			}
			if sessions.logged[0].messageType != domain.MessageTypeUser {
				t.Errorf("first logged message type = %s, want user", sessions.logged[0].messageType)
			}
			if sessions.logged[1].messageType != domain.MessageTypeBot {
				t.Errorf("second logged message type = %s, want bot", sessions.logged[1].messageType)
			}
		})
	}
}

func TestEngine_HelpListsCapabilities(t *testing.T) {
	sessions := &fakeSessions{messageCount: 3}
	profiles := &fakeProfiles{profiles: map[string]*domain.AttendeeProfile{"u1": testProfile()}}
	e := newTestEngine(sessions, profiles)

	reply, err := e.Reply(context.Background(), &domain.Identity{UserID: "u1"}, "I need assistance")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	for _, capability := range []string{"Recommend sessions", "schedules", "speakers"} {
		if !strings.Contains(reply, capability) {
			t.Errorf("help reply missing %q: %q", capability, reply)
		}
	}
}
