package concierge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aura-events/concierge-service/internal/domain"
	"github.com/aura-events/concierge-service/internal/log"
	"github.com/aura-events/concierge-service/internal/store"
)

// ResponseEngine maps an inbound message and a user identity to reply text.
// An empty message signals first contact and yields the welcome reply.
type ResponseEngine interface {
	Reply(ctx context.Context, identity *domain.Identity, message string) (string, error)
}

// Engine is the rule-based concierge. Intent detection is keyword matching
// over the lowered message; conversation state lives in the day-keyed chat
// session.
type Engine struct {
	sessions store.SessionStore
	profiles store.ProfileStore
	catalog  *Catalog
	now      func() time.Time
}

func NewEngine(sessions store.SessionStore, profiles store.ProfileStore, catalog *Catalog) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{
		sessions: sessions,
		profiles: profiles,
		catalog:  catalog,
		now:      time.Now,
	}
}

func (e *Engine) Reply(ctx context.Context, identity *domain.Identity, message string) (string, error) {
	if identity == nil {
		return e.guestReply(), nil
	}

	session, err := e.sessions.GetOrCreateSession(ctx, identity.UserID, e.now())
	if err != nil {
		return "", fmt.Errorf("failed to open chat session: %w", err)
	}

	trimmed := strings.TrimSpace(message)

	// First contact (empty message, or nothing logged yet today) gets the
	// personalised welcome. Decided before the inbound message is logged.
	firstContact := trimmed == "" || e.isFirstContact(ctx, session)

	// The inbound message is persisted ahead of the profile branch, so
	// profile-less users still keep their history.
	if trimmed != "" {
		e.logMessage(ctx, session.ID, domain.MessageTypeUser, trimmed)
	}

	profile, err := e.profiles.FindProfile(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			reply := e.onboardingReply(identity)
			e.logMessage(ctx, session.ID, domain.MessageTypeBot, reply)
			return reply, nil
		}
		return "", fmt.Errorf("failed to load profile: %w", err)
	}

	e.touchLastLogin(ctx, identity.UserID)

	if firstContact {
		reply := e.welcomeReply(profile)
		e.logMessage(ctx, session.ID, domain.MessageTypeWelcome, reply)
		return reply, nil
	}

	reply := e.dispatch(trimmed, profile)
	e.logMessage(ctx, session.ID, domain.MessageTypeBot, reply)

	return reply, nil
}

// touchLastLogin stamps the profile's last login. A failed stamp never
// affects the reply.
func (e *Engine) touchLastLogin(ctx context.Context, userID string) {
	if err := e.profiles.TouchLastLogin(ctx, userID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Str(log.FieldUserID, userID).Err(err).Msg("failed to stamp last login")
	}
}

func (e *Engine) isFirstContact(ctx context.Context, session *domain.ChatSession) bool {
	count, err := e.sessions.MessageCount(ctx, session.ID)
	if err != nil {
		return false
	}
	return count == 0
}

// logMessage persists a chat message. Persistence is a side effect of the
// reply path and must never block or fail it.
func (e *Engine) logMessage(ctx context.Context, sessionID uint, messageType, content string) {
	if err := e.sessions.AppendMessage(ctx, sessionID, messageType, content, nil); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Uint("session_id", sessionID).Msg("failed to log chat message")
	}
}

func (e *Engine) dispatch(message string, profile *domain.AttendeeProfile) string {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, "recommend", "suggest", "session", "talk", "what should"):
		return e.recommendationReply(profile)
	case containsAny(lower, "schedule", "agenda", "timeline", "when", "time"):
		return e.scheduleReply()
	case containsAny(lower, "speaker", "who", "presenter"):
		return e.speakerReply()
	case containsAny(lower, "location", "where", "room", "venue"):
		return e.locationReply()
	case containsAny(lower, "network", "connect", "meet", "people"):
		return e.networkingReply()
	case containsAny(lower, "help", "assistance", "support"):
		return e.helpReply()
	case containsAny(lower, "thank", "thanks", "great", "awesome"):
		return "You're very welcome! I'm here whenever you need me."
	default:
		return e.generalReply(lower)
	}
}

func (e *Engine) guestReply() string {
	return "Welcome to AURA! Please log in or register to access your personal concierge and get personalized recommendations."
}

func (e *Engine) onboardingReply(identity *domain.Identity) string {
	name := identity.Username
	if name == "" {
		name = identity.UserID
	}
	return fmt.Sprintf("Hi %s! It looks like you're new here. Let me help you complete your profile so I can provide better recommendations. What are your main interests for this event?", name)
}

func (e *Engine) welcomeReply(profile *domain.AttendeeProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s! Welcome to your personal AURA concierge.\n\n", profile.DisplayName)

	if profile.FirstTimeAttendee {
		b.WriteString("I see this is your first time with us - how exciting!\n")
	} else {
		b.WriteString("Great to have you back!\n")
	}

	if interests := splitInterests(profile.Interests); len(interests) > 0 {
		shown := interests
		if len(shown) > 3 {
			shown = shown[:3]
		}
		fmt.Fprintf(&b, "Based on your interests in %s, I have some recommendations lined up.\n", strings.Join(shown, ", "))
	}

	upcoming := e.catalog.UpcomingSessions(e.now(), 2*time.Hour)
	if len(upcoming) > 0 {
		b.WriteString("Here's what's happening soon that might interest you:\n")
		for i, s := range upcoming {
			if i >= 2 {
				break
			}
			start := e.now().Add(s.StartOffset)
			fmt.Fprintf(&b, "- %s at %s\n", s.Title, start.Format("15:04"))
		}
	}

	b.WriteString("\nHow can I help you make the most of your event today?")
	return b.String()
}

func (e *Engine) recommendationReply(profile *domain.AttendeeProfile) string {
	recs := e.recommendSessions(profile, 3)
	if len(recs) == 0 {
		return "I don't see any upcoming sessions right now, but let me know what topics interest you and I'll keep an eye out!"
	}

	var b strings.Builder
	b.WriteString("Here are my top recommendations for you:\n\n")
	for i, s := range recs {
		start := e.now().Add(s.StartOffset)
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Title)
		fmt.Fprintf(&b, "   %s | %s", start.Format("15:04"), s.Room)
		if s.Speaker != "" {
			fmt.Fprintf(&b, " | %s", s.Speaker)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "   %s\n\n", truncate(s.Description, 100))
	}
	b.WriteString("Would you like more details about any of these sessions?")
	return b.String()
}

// recommendSessions scores programme sessions against the profile's
// interests and soon-to-start boost, highest first.
func (e *Engine) recommendSessions(profile *domain.AttendeeProfile, limit int) []EventSession {
	interests := splitInterests(profile.Interests)
	now := e.now()

	type scored struct {
		session EventSession
		score   int
	}
	var candidates []scored

	for _, s := range e.catalog.Sessions {
		score := 0
		haystack := strings.ToLower(s.Title + " " + s.Description + " " + strings.Join(s.Topics, " "))
		for _, interest := range interests {
			if interest != "" && strings.Contains(haystack, interest) {
				score += 10
			}
		}
		start := now.Add(s.StartOffset)
		if start.After(now) && start.Before(now.Add(4*time.Hour)) {
			score += 5
		}
		candidates = append(candidates, scored{session: s, score: score})
	}

	// Insertion sort keeps catalogue order for equal scores.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].score > candidates[j-1].score; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}

	var out []EventSession
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		out = append(out, c.session)
	}
	return out
}

func (e *Engine) scheduleReply() string {
	now := e.now()
	var b strings.Builder
	b.WriteString("Here's today's schedule:\n\n")
	for _, s := range e.catalog.Sessions {
		start := now.Add(s.StartOffset)
		status := ""
		if s.StartOffset <= time.Hour {
			status = " (coming up!)"
		}
		fmt.Fprintf(&b, "%s - %s%s\n", start.Format("15:04"), s.Title, status)
	}
	b.WriteString("\nWant me to add any of these to your personal schedule?")
	return b.String()
}

func (e *Engine) speakerReply() string {
	var b strings.Builder
	b.WriteString("Here are some featured speakers:\n\n")
	for _, s := range e.catalog.Sessions {
		if s.Speaker == "" {
			continue
		}
		fmt.Fprintf(&b, "%s (%s) - %s\n", s.Speaker, s.Company, s.Title)
	}
	b.WriteString("\nWant to know when they're presenting? Just ask!")
	return b.String()
}

func (e *Engine) locationReply() string {
	return `Venue information:

Main Auditorium - Keynotes and main sessions
Conference Room A - Technical workshops
Conference Room B - Panel discussions
Networking Lounge - Coffee breaks and networking
Exhibition Hall - Sponsor booths and demos

Need directions to a specific room? Just ask!`
}

func (e *Engine) networkingReply() string {
	return `Networking tips:
- Coffee breaks are great for casual conversations
- Join the lunch networking session in the main hall
- Check out the interactive booths in the exhibition area
- Don't forget to exchange contact information!

Would you like me to suggest attendees with similar interests?`
}

func (e *Engine) helpReply() string {
	return `I'm here to help! Here's what I can do:

- Recommend sessions based on your interests
- Show schedules and timing information
- Find speakers and their sessions
- Provide venue directions
- Suggest networking opportunities

Just ask in natural language, for example:
- "What sessions should I attend?"
- "When is the next keynote?"
- "Who's speaking about AI?"`
}

func (e *Engine) generalReply(lower string) string {
	if containsAny(lower, "ai", "artificial intelligence", "machine learning", "ml") {
		var matches []EventSession
		for _, s := range e.catalog.Sessions {
			haystack := strings.ToLower(s.Title + " " + s.Description)
			if strings.Contains(haystack, "ai") || strings.Contains(haystack, "machine learning") {
				matches = append(matches, s)
			}
		}
		if len(matches) > 0 {
			var b strings.Builder
			b.WriteString("I found some AI-related sessions for you:\n")
			for _, s := range matches {
				start := e.now().Add(s.StartOffset)
				fmt.Fprintf(&b, "- %s at %s\n", s.Title, start.Format("15:04"))
			}
			return b.String()
		}
	}

	return `I'm not sure I understand that exactly, but I'm here to help!

Try asking me:
- "What sessions do you recommend?"
- "Show me today's schedule"
- "Who are the speakers?"
- "Help me with networking"`
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func splitInterests(interests string) []string {
	if strings.TrimSpace(interests) == "" {
		return nil
	}
	parts := strings.Split(interests, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
