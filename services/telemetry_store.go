package services

import (
	"sync"
	"time"

	"github.com/titorm/fodmap-facil-sub001/models"

	"gorm.io/gorm"
)

// EventStore is the append-only local telemetry log. Events flip to synced
// after a confirmed remote delivery and are only ever removed by age-based
// pruning of synced rows.
type EventStore interface {
	AddEvents(events []models.TelemetryEvent) error
	GetAll() ([]models.TelemetryEvent, error)
	GetUnsynced() ([]models.TelemetryEvent, error)
	MarkSynced(eventIDs []string) error
	PruneOldEvents(daysToKeep int) (int, error)
	UnsyncedCount() (int64, error)
}

// GormEventStore is the Postgres-backed store used in production.
type GormEventStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormEventStore(db *gorm.DB) *GormEventStore {
	return &GormEventStore{db: db, now: time.Now}
}

func (s *GormEventStore) AddEvents(events []models.TelemetryEvent) error {
	if len(events) == 0 {
		return nil
	}
	return s.db.Create(&events).Error
}

func (s *GormEventStore) GetAll() ([]models.TelemetryEvent, error) {
	var out []models.TelemetryEvent
	err := s.db.Order("timestamp ASC").Find(&out).Error
	return out, err
}

func (s *GormEventStore) GetUnsynced() ([]models.TelemetryEvent, error) {
	var out []models.TelemetryEvent
	err := s.db.Where("synced = ?", false).Order("timestamp ASC").Find(&out).Error
	return out, err
}

func (s *GormEventStore) MarkSynced(eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	// unknown ids simply match nothing
	return s.db.Model(&models.TelemetryEvent{}).
		Where("event_id IN ?", eventIDs).
		Update("synced", true).Error
}

// PruneOldEvents removes synced events strictly older than the cutoff. An event
// stamped exactly at the cutoff survives; unsynced events survive at any age.
func (s *GormEventStore) PruneOldEvents(daysToKeep int) (int, error) {
	cutoff := s.now().AddDate(0, 0, -daysToKeep)
	res := s.db.
		Where("synced = ? AND timestamp < ?", true, cutoff).
		Delete(&models.TelemetryEvent{})
	return int(res.RowsAffected), res.Error
}

func (s *GormEventStore) UnsyncedCount() (int64, error) {
	var n int64
	err := s.db.Model(&models.TelemetryEvent{}).Where("synced = ?", false).Count(&n).Error
	return n, err
}

// MemoryEventStore keeps the log in process memory. Used by the dev endpoints
// and as the reference implementation in tests; the store is mutex-serialized
// because the telemetry flush timer runs on its own goroutine.
type MemoryEventStore struct {
	mu     sync.Mutex
	events []models.TelemetryEvent
	now    func() time.Time
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{now: time.Now}
}

// SetClock overrides the pruning clock, for tests.
func (s *MemoryEventStore) SetClock(now func() time.Time) { s.now = now }

func (s *MemoryEventStore) AddEvents(events []models.TelemetryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *MemoryEventStore) GetAll() ([]models.TelemetryEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TelemetryEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *MemoryEventStore) GetUnsynced() ([]models.TelemetryEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TelemetryEvent
	for _, e := range s.events {
		if !e.Synced {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryEventStore) MarkSynced(eventIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[string]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		ids[id] = struct{}{}
	}
	for i := range s.events {
		if _, ok := ids[s.events[i].EventID]; ok {
			s.events[i].Synced = true
		}
	}
	return nil
}

func (s *MemoryEventStore) PruneOldEvents(daysToKeep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().AddDate(0, 0, -daysToKeep)
	kept := s.events[:0]
	removed := 0
	for _, e := range s.events {
		if e.Synced && e.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return removed, nil
}

func (s *MemoryEventStore) UnsyncedCount() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.events {
		if !e.Synced {
			n++
		}
	}
	return n, nil
}
