package services

import (
	"log"
	"sync"
	"time"

	"github.com/titorm/fodmap-facil-sub001/models"

	"github.com/google/uuid"
)

// RemoteTelemetryCollector delivers a batch to the analytics backend. Delivery
// is at-least-once: a retried batch may reach the collector twice, so the
// collector is expected to dedupe on event id.
type RemoteTelemetryCollector interface {
	Send(events []models.TelemetryEvent) error
}

const (
	defaultMaxBatchSize   = 50
	defaultMaxBatchTime   = 5 * time.Minute
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second
)

// TelemetryService buffers interaction events in memory, flushes them to the
// durable store in batches and pushes unsynced events to the remote collector
// with bounded exponential backoff. The buffer and timer are mutex-serialized;
// the flush timer is armed once per buffer lifecycle, not on every add.
type TelemetryService struct {
	store     EventStore
	collector RemoteTelemetryCollector

	mu    sync.Mutex
	buf   []models.TelemetryEvent
	timer *time.Timer

	maxBatchSize   int
	maxBatchTime   time.Duration
	maxRetries     int
	retryBaseDelay time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

func NewTelemetryService(store EventStore, collector RemoteTelemetryCollector) *TelemetryService {
	return &TelemetryService{
		store:          store,
		collector:      collector,
		maxBatchSize:   defaultMaxBatchSize,
		maxBatchTime:   defaultMaxBatchTime,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		now:            time.Now,
		sleep:          time.Sleep,
	}
}

func (s *TelemetryService) TrackContentViewed(userID uint, contentID string, state models.UserState) {
	s.track(userID, models.EventContentViewed, contentID, state, 0)
}

func (s *TelemetryService) TrackContentExpanded(userID uint, contentID string, state models.UserState, timeSpentSec int) {
	s.track(userID, models.EventContentExpanded, contentID, state, timeSpentSec)
}

func (s *TelemetryService) TrackContentCompleted(userID uint, contentID string, state models.UserState, timeSpentSec int) {
	s.track(userID, models.EventContentCompleted, contentID, state, timeSpentSec)
}

func (s *TelemetryService) track(userID uint, eventType, contentID string, state models.UserState, timeSpent int) {
	e := models.TelemetryEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		EventType: eventType,
		ContentID: contentID,
		Timestamp: s.now(),
		UserState: state,
		TimeSpent: timeSpent,
	}

	s.mu.Lock()
	s.buf = append(s.buf, e)
	full := len(s.buf) >= s.maxBatchSize
	if !full && s.timer == nil {
		s.timer = time.AfterFunc(s.maxBatchTime, func() {
			if err := s.Flush(); err != nil {
				log.Printf("telemetry: timed flush failed: %v", err)
			}
		})
	}
	s.mu.Unlock()

	if full {
		if err := s.Flush(); err != nil {
			log.Printf("telemetry: flush failed: %v", err)
		}
	}
}

// Flush persists the buffered events and clears the buffer. It does not talk to
// the remote collector. On a store failure the batch is put back so nothing is
// dropped before it is durable.
func (s *TelemetryService) Flush() error {
	s.mu.Lock()
	batch := s.buf
	s.buf = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := s.store.AddEvents(batch); err != nil {
		s.mu.Lock()
		s.buf = append(batch, s.buf...)
		s.mu.Unlock()
		return err
	}
	return nil
}

// SyncEvents flushes the buffer, then tries to deliver everything unsynced.
// Attempts are bounded; the delay after attempt n is retryBaseDelay·2ⁿ. On
// exhaustion the events stay unsynced in the store and 0 is returned; the
// caller can simply call SyncEvents again later.
func (s *TelemetryService) SyncEvents() (int, error) {
	if err := s.Flush(); err != nil {
		return 0, err
	}

	unsynced, err := s.store.GetUnsynced()
	if err != nil {
		return 0, err
	}
	if len(unsynced) == 0 {
		return 0, nil
	}

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			s.sleep(s.retryBaseDelay * (1 << (attempt - 1)))
		}
		if lastErr = s.collector.Send(unsynced); lastErr == nil {
			ids := make([]string, len(unsynced))
			for i, e := range unsynced {
				ids[i] = e.EventID
			}
			if err := s.store.MarkSynced(ids); err != nil {
				return 0, err
			}
			return len(unsynced), nil
		}
	}

	log.Printf("telemetry: sync gave up after %d attempts: %v", s.maxRetries, lastErr)
	return 0, nil
}

// ViewedContentIDs returns the distinct content ids the user has viewed, in
// first-seen order. Buffered events are flushed first so fresh views count.
func (s *TelemetryService) ViewedContentIDs(userID uint) ([]string, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	events, err := s.store.GetAll()
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var out []string
	for _, e := range events {
		if e.EventType != models.EventContentViewed || e.UserID != userID {
			continue
		}
		if _, dup := seen[e.ContentID]; dup {
			continue
		}
		seen[e.ContentID] = struct{}{}
		out = append(out, e.ContentID)
	}
	return out, nil
}

// Destroy stops a pending flush timer. Safe to call more than once; a flush
// already in progress is not interrupted.
func (s *TelemetryService) Destroy() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
}
