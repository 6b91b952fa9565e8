package concierge

import (
	"time"

	"github.com/aura-events/concierge-service/internal/domain"
)

// EventSession is one talk on the conference programme.
type EventSession struct {
	ID          string
	Title       string
	Speaker     string
	Company     string
	Room        string
	Description string
	Topics      []string
	StartOffset time.Duration // relative to now; stand-in for programme data
	Duration    time.Duration
}

// Catalog provides the programme consulted for recommendations and the live
// feed. The default catalog carries curated sample content so the concierge
// works before real programme data is loaded.
type Catalog struct {
	Sessions     []EventSession
	SampleEvents []domain.FeedItem
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		Sessions: []EventSession{
			{
				ID:          "s-101",
				Title:       "Keynote: The Next Decade of AI",
				Speaker:     "Dana Whitfield",
				Company:     "Nova Labs",
				Room:        "Main Auditorium",
				Description: "Opening keynote on where applied machine learning is heading and what it means for builders.",
				Topics:      []string{"ai", "machine learning", "keynote"},
				StartOffset: 25 * time.Minute,
				Duration:    time.Hour,
			},
			{
				ID:          "s-102",
				Title:       "Scaling Real-Time Systems",
				Speaker:     "Miguel Arroyo",
				Company:     "Streamline",
				Room:        "Conference Room A",
				Description: "Hard-won lessons from operating persistent-connection backends at millions of concurrent users.",
				Topics:      []string{"infrastructure", "realtime", "engineering"},
				StartOffset: 90 * time.Minute,
				Duration:    45 * time.Minute,
			},
			{
				ID:          "s-103",
				Title:       "Design Systems that Survive Rebrands",
				Speaker:     "Priya Raman",
				Company:     "Figment",
				Room:        "Conference Room B",
				Description: "A practical walkthrough of building UI foundations that outlive marketing cycles.",
				Topics:      []string{"design", "ux", "frontend"},
				StartOffset: 3 * time.Hour,
				Duration:    45 * time.Minute,
			},
			{
				ID:          "s-104",
				Title:       "Funding Your First Startup",
				Speaker:     "Tomasz Kowalczyk",
				Company:     "Seedline Ventures",
				Room:        "Main Auditorium",
				Description: "What early-stage investors actually look for, told from the other side of the table.",
				Topics:      []string{"startup", "business", "funding"},
				StartOffset: 5 * time.Hour,
				Duration:    time.Hour,
			},
		},
		SampleEvents: []domain.FeedItem{
			{
				Type:     "tech_conference",
				Title:    "AI & Machine Learning Summit",
				Content:  "Industry leaders discuss the future of AI, ML applications and emerging technologies.",
				Action:   "Register Now",
				URL:      "https://events.example.com/ai-ml-summit",
				Priority: domain.PriorityHigh,
			},
			{
				Type:     "startup_pitch",
				Title:    "Startup Pitch Competition",
				Content:  "Watch startups present to VCs and angel investors. Network with founders afterwards.",
				Action:   "View Startups",
				URL:      "https://events.example.com/startup-pitch",
				Priority: domain.PriorityHigh,
			},
			{
				Type:     "developer_workshop",
				Title:    "Full-Stack Development Workshop",
				Content:  "Hands-on workshop covering modern web development practices end to end.",
				Action:   "Join Workshop",
				URL:      "https://events.example.com/dev-workshop",
				Priority: domain.PriorityMedium,
			},
			{
				Type:     "networking_event",
				Title:    "Tech Networking Mixer",
				Content:  "Connect with fellow developers, designers and tech enthusiasts over coffee.",
				Action:   "RSVP Here",
				URL:      "https://events.example.com/networking-mixer",
				Priority: domain.PriorityMedium,
			},
			{
				Type:     "career_fair",
				Title:    "Tech Career Fair",
				Content:  "Meet recruiters from established companies and emerging startups. Bring your resume.",
				Action:   "Find Jobs",
				URL:      "https://events.example.com/career-fair",
				Priority: domain.PriorityHigh,
			},
		},
	}
}

// UpcomingSessions returns programme sessions starting within the window.
func (c *Catalog) UpcomingSessions(now time.Time, window time.Duration) []EventSession {
	var out []EventSession
	for _, s := range c.Sessions {
		start := now.Add(s.StartOffset)
		if start.After(now) && start.Before(now.Add(window)) {
			out = append(out, s)
		}
	}
	return out
}
