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

// FeedGenerator produces the prioritized live feed for a user. The returned
// slice is sorted descending by priority (high first, ties in generator
// order) and is never empty and never accompanied by an error: callers with
// no profile, or any assembly failure, get the safe sample list instead.
type FeedGenerator interface {
	Feed(ctx context.Context, identity *domain.Identity) []domain.FeedItem
}

// Generator assembles the live feed from the programme catalog and the
// attendee's profile.
type Generator struct {
	profiles store.ProfileStore
	catalog  *Catalog
	now      func() time.Time
}

func NewGenerator(profiles store.ProfileStore, catalog *Catalog) *Generator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Generator{
		profiles: profiles,
		catalog:  catalog,
		now:      time.Now,
	}
}

func (g *Generator) Feed(ctx context.Context, identity *domain.Identity) []domain.FeedItem {
	if identity == nil {
		return g.fallbackFeed()
	}

	profile, err := g.profiles.FindProfile(ctx, identity.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrProfileNotFound) {
			l := log.Ctx(ctx)
			l.Error().Str(log.FieldUserID, identity.UserID).Err(err).Msg("profile lookup failed, serving sample feed")
		}
		return g.fallbackFeed()
	}

	now := g.now()
	items := make([]domain.FeedItem, 0, len(g.catalog.SampleEvents)+8)
	items = append(items, g.catalog.SampleEvents...)

	// Sessions starting soon.
	for _, s := range g.catalog.UpcomingSessions(now, 2*time.Hour) {
		start := now.Add(s.StartOffset)
		priority := domain.PriorityMedium
		if s.StartOffset <= 30*time.Minute {
			priority = domain.PriorityHigh
		}
		items = append(items, domain.FeedItem{
			Type:     "upcoming_session",
			Title:    "Starting soon: " + s.Title,
			Content:  fmt.Sprintf("Starts at %s in %s", start.Format("15:04"), s.Room),
			Action:   "View Details",
			URL:      "https://events.example.com/session/" + s.ID,
			Priority: priority,
		})
	}

	// Interest-based recommendations.
	for _, s := range g.recommended(profile, 3) {
		items = append(items, domain.FeedItem{
			Type:     "recommendation",
			Title:    "Recommended: " + s.Title,
			Content:  truncate(s.Description, 100),
			Action:   "Learn More",
			URL:      "https://events.example.com/session/" + s.ID,
			Priority: domain.PriorityMedium,
		})
	}

	if profile.NetworkingPreference == domain.NetworkingOpen {
		items = append(items, domain.FeedItem{
			Type:     "networking",
			Title:    "Networking Opportunity",
			Content:  "Coffee break starting soon - great time to connect!",
			Action:   "Get networking tips",
			Priority: domain.PriorityLow,
		})
	}

	domain.SortFeed(items)
	return items
}

// recommended filters the catalogue down to sessions matching the profile's
// interests, catalogue order preserved.
func (g *Generator) recommended(profile *domain.AttendeeProfile, limit int) []EventSession {
	interests := splitInterests(profile.Interests)
	if len(interests) == 0 {
		return nil
	}

	var out []EventSession
	for _, s := range g.catalog.Sessions {
		if len(out) >= limit {
			break
		}
		haystack := strings.ToLower(s.Title + " " + s.Description + " " + strings.Join(s.Topics, " "))
		for _, interest := range interests {
			if strings.Contains(haystack, interest) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// fallbackFeed is the safe default list: curated sample events, sorted.
func (g *Generator) fallbackFeed() []domain.FeedItem {
	items := make([]domain.FeedItem, len(g.catalog.SampleEvents))
	copy(items, g.catalog.SampleEvents)
	domain.SortFeed(items)
	return items
}
