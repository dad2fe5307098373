package services

import (
	"fmt"
	"log"
	"time"

	"github.com/titorm/fodmap-facil-sub001/models"
	"github.com/titorm/fodmap-facil-sub001/utils"

	"gorm.io/gorm"
)

const telemetryRetentionDays = 30

// Dispatcher is the single background worker: it delivers due reminders,
// reconciles washout periods whose end has passed, and prunes old synced
// telemetry. One goroutine, stopped via Stop.
type Dispatcher struct {
	db        *gorm.DB
	reminders ReminderStore
	events    EventStore
	hub       *RealtimeHub
	push      *PushService
	now       func() time.Time

	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewDispatcher(db *gorm.DB, reminders ReminderStore, events EventStore, hub *RealtimeHub, push *PushService) *Dispatcher {
	return &Dispatcher{
		db:        db,
		reminders: reminders,
		events:    events,
		hub:       hub,
		push:      push,
		now:       time.Now,
		interval:  time.Minute,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (d *Dispatcher) Start() {
	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-d.stop:
				return
			case <-ticker.C:
				d.Tick()
			}
		}
	}()
}

func (d *Dispatcher) Stop() {
	close(d.stop)
	<-d.done
}

// Tick runs one dispatch pass. Exported so the dev endpoint can force one.
func (d *Dispatcher) Tick() {
	d.deliverDueReminders()
	d.reconcileWashouts()
	d.pruneTelemetry()
}

func (d *Dispatcher) deliverDueReminders() {
	due, err := d.reminders.FindDue(d.now())
	if err != nil {
		log.Printf("dispatcher: find due reminders: %v", err)
		return
	}

	for _, r := range due {
		userID, err := d.washoutOwner(r.WashoutPeriodID)
		if err != nil {
			log.Printf("dispatcher: owner of washout %d: %v", r.WashoutPeriodID, err)
			continue
		}

		if d.push != nil {
			d.push.PushToUser(userID, "Washout reminder", r.Message, map[string]string{
				"reminderId": fmt.Sprintf("%d", r.ID),
			})
		}
		if d.hub != nil {
			d.hub.BroadcastReminder(userID, r.ID, r.Message)
		}
		if err := d.reminders.MarkSent(r.ID); err != nil {
			log.Printf("dispatcher: mark reminder %d sent: %v", r.ID, err)
		}
	}
}

// reconcileWashouts flips periods past their end to completed and sends the
// user their tolerance summary by email and over the hub.
func (d *Dispatcher) reconcileWashouts() {
	var expired []models.WashoutPeriod
	err := d.db.
		Where("status = ? AND end_date <= ?", models.WashoutActive, d.now()).
		Find(&expired).Error
	if err != nil {
		log.Printf("dispatcher: find expired washouts: %v", err)
		return
	}

	for _, w := range expired {
		w.Status = models.WashoutCompleted
		if err := d.db.Save(&w).Error; err != nil {
			log.Printf("dispatcher: complete washout %d: %v", w.ID, err)
			continue
		}

		var run models.ProtocolRun
		if err := d.db.First(&run, w.ProtocolRunID).Error; err != nil {
			continue
		}
		if d.hub != nil {
			d.hub.BroadcastWashoutComplete(run.UserID, w.ID, w.Group)
		}

		var user models.User
		if err := d.db.First(&user, run.UserID).Error; err != nil {
			continue
		}
		var steps []models.TestStep
		if err := d.db.Preload("Symptoms").
			Where("protocol_run_id = ? AND \"group\" = ?", run.ID, w.Group).
			Order("day_number ASC").Find(&steps).Error; err != nil {
			continue
		}
		recs := GenerateRecommendations(steps)
		if len(recs) > 0 {
			if err := utils.SendWashoutCompleteEmail(user.Email, w.Group, recs); err != nil {
				log.Printf("dispatcher: washout email for user %d: %v", user.ID, err)
			}
		}
	}
}

func (d *Dispatcher) pruneTelemetry() {
	removed, err := d.events.PruneOldEvents(telemetryRetentionDays)
	if err != nil {
		log.Printf("dispatcher: prune telemetry: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("dispatcher: pruned %d synced telemetry events", removed)
	}
}

func (d *Dispatcher) washoutOwner(washoutPeriodID uint) (uint, error) {
	var w models.WashoutPeriod
	if err := d.db.First(&w, washoutPeriodID).Error; err != nil {
		return 0, err
	}
	var run models.ProtocolRun
	if err := d.db.First(&run, w.ProtocolRunID).Error; err != nil {
		return 0, err
	}
	return run.UserID, nil
}
