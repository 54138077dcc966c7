// Package scheduler runs periodic garden jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/sunflower/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a standard five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime returns the first activation of schedule after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Enqueuer adds tasks to the durable queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// WateringReminderScheduler enqueues a watering reminder task on every tick.
type WateringReminderScheduler struct {
	enqueuer Enqueuer
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewWateringReminderScheduler creates a scheduler for the given cron schedule.
func NewWateringReminderScheduler(enqueuer Enqueuer, schedule string) *WateringReminderScheduler {
	return &WateringReminderScheduler{
		enqueuer: enqueuer,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler. It stops on its own when ctx is cancelled.
func (s *WateringReminderScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.enqueue(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule watering reminders: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule, time.Now())
	log.Printf("Watering reminders: started with schedule '%s'. Next run: %v", s.schedule, nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running tick to finish.
func (s *WateringReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Watering reminders: stopped")
}

// Reschedule switches to a new schedule, restarting if the scheduler was running.
func (s *WateringReminderScheduler) Reschedule(ctx context.Context, schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	s.mu.Lock()
	wasRunning := s.isRunning
	s.mu.Unlock()

	if wasRunning {
		s.Stop()
	}

	s.mu.Lock()
	s.schedule = schedule
	s.mu.Unlock()

	if !wasRunning {
		return nil
	}
	return s.Start(ctx)
}

// RunNow enqueues a reminder task immediately and returns its id.
func (s *WateringReminderScheduler) RunNow(ctx context.Context) (string, error) {
	return s.enqueuer.Enqueue(ctx, tasks.WateringReminderTask{})
}

// IsRunning returns whether the scheduler is active
func (s *WateringReminderScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Schedule returns the current cron expression.
func (s *WateringReminderScheduler) Schedule() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule
}

// GetNextRunTime returns when the next reminder will be enqueued
func (s *WateringReminderScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *WateringReminderScheduler) enqueue(ctx context.Context) {
	id, err := s.enqueuer.Enqueue(ctx, tasks.WateringReminderTask{})
	if err != nil {
		log.Printf("Watering reminders: failed to enqueue task: %v", err)
		return
	}
	log.Printf("Watering reminders: enqueued task %s", id)
}
