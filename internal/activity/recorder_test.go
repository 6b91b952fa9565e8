package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aura-events/concierge-service/internal/domain"
)

type captureStore struct {
	mu      sync.Mutex
	entries []string
	fail    bool
}

func (s *captureStore) AppendActivity(_ context.Context, userID, activityType string, _ domain.JSONMap) error {
	if s.fail {
		return errors.New("database down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, userID+":"+activityType)
	return nil
}

func (s *captureStore) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

func TestAsyncRecorder_PreservesOrder(t *testing.T) {
	cs := &captureStore{}
	r := NewAsyncRecorder(cs)

	r.Record("u1", "chat_connected", nil)
	r.Record("u1", "user_message", domain.JSONMap{"message": "hi"})
	r.Record("u1", "chat_disconnected", domain.JSONMap{"close_code": 1000})

	r.Close()

	want := []string{"u1:chat_connected", "u1:user_message", "u1:chat_disconnected"}
	got := cs.recorded()
	if len(got) != len(want) {
		t.Fatalf("recorded %d entries, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAsyncRecorder_StoreFailureIsSwallowed(t *testing.T) {
	cs := &captureStore{fail: true}
	r := NewAsyncRecorder(cs)

	// Must not panic or surface the error.
	r.Record("u1", "user_message", domain.JSONMap{"message": "hi"})
	r.Close()
}

func TestAsyncRecorder_CloseDrainsQueue(t *testing.T) {
	cs := &captureStore{}
	r := NewAsyncRecorder(cs)

	for i := 0; i < 50; i++ {
		r.Record("u1", "user_message", nil)
	}

	done := make(chan struct{})
	go func() {
		r.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close() did not return")
	}

	if got := len(cs.recorded()); got != 50 {
		t.Errorf("recorded %d entries after Close, want 50", got)
	}
}
