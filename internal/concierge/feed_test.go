package concierge

import (
	"context"
	"errors"
	"testing"

	"github.com/aura-events/concierge-service/internal/domain"
)

func assertSorted(t *testing.T, items []domain.FeedItem) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		if domain.PriorityRank(items[i].Priority) > domain.PriorityRank(items[i-1].Priority) {
			t.Errorf("feed not sorted by priority at index %d: %s after %s",
				i, items[i].Priority, items[i-1].Priority)
		}
	}
}

func TestGenerator_AnonymousGetsSampleFeed(t *testing.T) {
	g := NewGenerator(&fakeProfiles{}, DefaultCatalog())

	feed := g.Feed(context.Background(), nil)

	if len(feed) == 0 {
		t.Fatal("fallback feed must not be empty")
	}
	if len(feed) != len(DefaultCatalog().SampleEvents) {
		t.Errorf("fallback feed has %d items, want %d sample events",
			len(feed), len(DefaultCatalog().SampleEvents))
	}
	assertSorted(t, feed)
}

func TestGenerator_ProfileLookupFailureFallsBack(t *testing.T) {
	profiles := &fakeProfiles{err: errors.New("database down")}
	g := NewGenerator(profiles, DefaultCatalog())

	feed := g.Feed(context.Background(), &domain.Identity{UserID: "u1"})

	if len(feed) == 0 {
		t.Fatal("feed must not be empty when profile lookup fails")
	}
	assertSorted(t, feed)
}

func TestGenerator_MissingProfileFallsBack(t *testing.T) {
	g := NewGenerator(&fakeProfiles{}, DefaultCatalog())

	feed := g.Feed(context.Background(), &domain.Identity{UserID: "unknown"})

	if len(feed) != len(DefaultCatalog().SampleEvents) {
		t.Errorf("missing profile should serve the sample feed, got %d items", len(feed))
	}
}

func TestGenerator_PersonalizedFeed(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*domain.AttendeeProfile{"u1": testProfile()}}
	g := NewGenerator(profiles, DefaultCatalog())

	feed := g.Feed(context.Background(), &domain.Identity{UserID: "u1"})

	if len(feed) <= len(DefaultCatalog().SampleEvents) {
		t.Errorf("personalized feed should add items beyond the %d samples, got %d",
			len(DefaultCatalog().SampleEvents), len(feed))
	}
	assertSorted(t, feed)

	var hasRecommendation, hasNetworking bool
	for _, item := range feed {
		switch item.Type {
		case "recommendation":
			hasRecommendation = true
		case "networking":
			hasNetworking = true
		}
	}
	if !hasRecommendation {
		t.Error("profile with matching interests should produce recommendation items")
	}
	if !hasNetworking {
		t.Error("open networking preference should produce a networking item")
	}
}

func TestGenerator_SelectiveNetworkingOmitsNetworkingItem(t *testing.T) {
	profile := testProfile()
	profile.NetworkingPreference = domain.NetworkingSelective
	profiles := &fakeProfiles{profiles: map[string]*domain.AttendeeProfile{"u1": profile}}
	g := NewGenerator(profiles, DefaultCatalog())

	feed := g.Feed(context.Background(), &domain.Identity{UserID: "u1"})

	for _, item := range feed {
		if item.Type == "networking" {
			t.Error("selective networking preference should not get a networking feed item")
		}
	}
}
