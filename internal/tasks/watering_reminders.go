package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/sunflower/internal/database/plantings"
)

const WateringRemindersQueue = "watering_reminders"

// DuePlantingsFinder lists plantings whose watering interval has elapsed.
type DuePlantingsFinder interface {
	GetPlantingsDueForWatering(ctx context.Context, now time.Time) ([]plantings.DuePlanting, error)
}

// DuePlantingsFinderProvider resolves the finder when a task runs.
type DuePlantingsFinderProvider func() (DuePlantingsFinder, error)

// WateringReminderTask reports the plantings that need water.
type WateringReminderTask struct{}

// Config returns the queue configuration for reminder tasks.
func (t WateringReminderTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        WateringRemindersQueue,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention:   retention(),
	}
}

// WateringReminderProcessor creates a processor function for WateringReminderTask.
func WateringReminderProcessor(provider DuePlantingsFinderProvider, now func() time.Time) backlite.QueueProcessor[WateringReminderTask] {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, task WateringReminderTask) error {
		if provider == nil {
			return fmt.Errorf("due plantings finder not configured")
		}

		finder, err := provider()
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}

		due, err := finder.GetPlantingsDueForWatering(ctx, now().UTC())
		if err != nil {
			return fmt.Errorf("find due plantings: %w", err)
		}

		if len(due) == 0 {
			log.Printf("[TASK] No plantings need watering")
			return nil
		}

		for _, d := range due {
			log.Printf("[TASK] %s (planting %d) needs watering, due since %s",
				d.Plant.Name, d.Planting.ID, d.NextWateringDate.Format("2006-01-02"))
		}
		return nil
	}
}

// NewWateringReminderQueue creates a backlite queue for reminder tasks.
func NewWateringReminderQueue(provider DuePlantingsFinderProvider) backlite.Queue {
	return backlite.NewQueue(WateringReminderProcessor(provider, nil))
}
