package tasks

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/seed"
)

const SeedDatabaseQueue = "seed_database"

// PlantInserter stores catalog entries, replacing existing ones with the same id.
type PlantInserter interface {
	InsertAll(ctx context.Context, plants []entities.Plant) error
}

// PlantInserterProvider resolves the inserter when a task runs, so the queue
// can be registered before the database it writes to has been opened.
type PlantInserterProvider func() (PlantInserter, error)

// SeedDatabaseTask fills the plant catalog from a bundled seed file.
type SeedDatabaseTask struct {
	Filename string `json:"filename"`
}

// Config returns the queue configuration for seeding tasks.
func (t SeedDatabaseTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        SeedDatabaseQueue,
		MaxAttempts: 3,
		Backoff:     10 * time.Second,
		Timeout:     time.Minute,
		Retention:   retention(),
	}
}

// SeedDatabaseProcessor creates a processor function for SeedDatabaseTask.
// Errors are returned to backlite, which retries according to the queue config.
func SeedDatabaseProcessor(assets fs.FS, provider PlantInserterProvider) backlite.QueueProcessor[SeedDatabaseTask] {
	return func(ctx context.Context, task SeedDatabaseTask) error {
		if provider == nil {
			return fmt.Errorf("plant inserter not configured")
		}

		plants, err := seed.LoadPlants(assets, task.Filename)
		if err != nil {
			return fmt.Errorf("load seed data: %w", err)
		}

		inserter, err := provider()
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}

		if err := inserter.InsertAll(ctx, plants); err != nil {
			return fmt.Errorf("insert plants: %w", err)
		}

		log.Printf("[SEED] Inserted %d plants from %s", len(plants), task.Filename)
		return nil
	}
}

// NewSeedDatabaseQueue creates a backlite queue for seeding tasks.
func NewSeedDatabaseQueue(assets fs.FS, provider PlantInserterProvider) backlite.Queue {
	return backlite.NewQueue(SeedDatabaseProcessor(assets, provider))
}
