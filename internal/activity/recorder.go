package activity

import (
	"context"
	"sync"
	"time"

	"github.com/aura-events/concierge-service/internal/domain"
	"github.com/aura-events/concierge-service/internal/log"
	"github.com/aura-events/concierge-service/internal/store"
)

// Recorder appends discrete user actions to the audit trail. Recording must
// never raise to the caller; failures are logged internally and swallowed.
type Recorder interface {
	Record(userID, activityType string, data domain.JSONMap)
}

type entry struct {
	userID       string
	activityType string
	data         domain.JSONMap
}

// AsyncRecorder buffers activity records and writes them from a single
// worker goroutine, so the reply path never waits on the database. A single
// worker also keeps one user's records in submission order.
type AsyncRecorder struct {
	store   store.ActivityStore
	entries chan entry
	done    chan struct{}
	once    sync.Once
	timeout time.Duration
}

func NewAsyncRecorder(s store.ActivityStore) *AsyncRecorder {
	r := &AsyncRecorder{
		store:   s,
		entries: make(chan entry, 512),
		done:    make(chan struct{}),
		timeout: 5 * time.Second,
	}
	go r.run()
	return r
}

// Record queues an activity for persistence. When the buffer is full the
// record is dropped; the audit trail is best-effort.
func (r *AsyncRecorder) Record(userID, activityType string, data domain.JSONMap) {
	l := log.L()
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(log.FieldUserID, userID).
		Str(log.FieldActivity, activityType).
		Msg("user activity")

	select {
	case r.entries <- entry{userID: userID, activityType: activityType, data: data}:
	default:
		l.Warn().Str(log.FieldUserID, userID).Str(log.FieldActivity, activityType).Msg("activity buffer full, record dropped")
	}
}

func (r *AsyncRecorder) run() {
	for e := range r.entries {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.store.AppendActivity(ctx, e.userID, e.activityType, e.data); err != nil {
			l := log.L()
			l.Error().Str(log.FieldUserID, e.userID).Str(log.FieldActivity, e.activityType).Err(err).Msg("failed to persist activity")
		}
		cancel()
	}
	close(r.done)
}

// Close stops accepting records and waits for queued entries to drain.
func (r *AsyncRecorder) Close() {
	r.once.Do(func() {
		close(r.entries)
		<-r.done
	})
}
