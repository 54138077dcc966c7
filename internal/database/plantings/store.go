// Package plantings provides queries over the garden_plantings table,
// including the plant/planting join used by the garden screen.
package plantings

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/live"
)

// ErrPlantingNotFound is returned when no planting has the requested id.
var ErrPlantingNotFound = errors.New("garden planting not found")

var (
	tablePlants          = entities.Plant{}.TableName()
	tableGardenPlantings = entities.GardenPlanting{}.TableName()
)

// DuePlanting is a planting whose watering interval has elapsed.
type DuePlanting struct {
	Plant            entities.Plant          `json:"plant"`
	Planting         entities.GardenPlanting `json:"planting"`
	NextWateringDate time.Time               `json:"nextWateringDate"`
}

// Store handles all garden planting database operations.
type Store struct {
	db       *gorm.DB
	notifier live.Notifier
}

// NewStore creates a new planting store.
func NewStore(db *gorm.DB, notifier live.Notifier) *Store {
	return &Store{db: db, notifier: notifier}
}

// GetGardenPlantings returns every planting in insertion order.
func (s *Store) GetGardenPlantings(ctx context.Context) ([]entities.GardenPlanting, error) {
	var plantings []entities.GardenPlanting
	err := s.db.WithContext(ctx).Order("id").Find(&plantings).Error
	return plantings, err
}

// GetGardenPlanting retrieves a planting by id.
func (s *Store) GetGardenPlanting(ctx context.Context, id int64) (*entities.GardenPlanting, error) {
	var planting entities.GardenPlanting
	err := s.db.WithContext(ctx).First(&planting, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlantingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &planting, nil
}

// IsPlanted reports whether at least one planting references plantID.
func (s *Store) IsPlanted(ctx context.Context, plantID string) (bool, error) {
	var planted bool
	err := s.db.WithContext(ctx).
		Raw("SELECT EXISTS(SELECT 1 FROM garden_plantings WHERE plant_id = ? LIMIT 1)", plantID).
		Scan(&planted).Error
	return planted, err
}

// GetPlantedGardens returns every plant with at least one planting, ordered by
// plant name, each with its plantings ordered by id. Both tables are read in
// one transaction so a concurrent write cannot interleave between them.
func (s *Store) GetPlantedGardens(ctx context.Context) ([]entities.PlantAndGardenPlantings, error) {
	var result []entities.PlantAndGardenPlantings

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plants []entities.Plant
		err := tx.Where("id IN (?)", tx.Model(&entities.GardenPlanting{}).Distinct("plant_id")).
			Order("name").
			Find(&plants).Error
		if err != nil {
			return err
		}

		result = make([]entities.PlantAndGardenPlantings, 0, len(plants))
		if len(plants) == 0 {
			return nil
		}

		ids := make([]string, len(plants))
		for i, p := range plants {
			ids[i] = p.ID
		}

		var plantings []entities.GardenPlanting
		if err := tx.Where("plant_id IN ?", ids).Order("id").Find(&plantings).Error; err != nil {
			return err
		}

		byPlant := make(map[string][]entities.GardenPlanting, len(plants))
		for _, gp := range plantings {
			byPlant[gp.PlantID] = append(byPlant[gp.PlantID], gp)
		}

		for _, p := range plants {
			result = append(result, entities.PlantAndGardenPlantings{
				Plant:           p,
				GardenPlantings: byPlant[p.ID],
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetPlantingsDueForWatering returns the plantings whose plant's watering
// interval has elapsed since their last watering, as of now.
func (s *Store) GetPlantingsDueForWatering(ctx context.Context, now time.Time) ([]DuePlanting, error) {
	gardens, err := s.GetPlantedGardens(ctx)
	if err != nil {
		return nil, err
	}

	due := make([]DuePlanting, 0)
	for _, garden := range gardens {
		for _, gp := range garden.GardenPlantings {
			if !garden.Plant.ShouldBeWatered(now, gp.LastWateringDate) {
				continue
			}
			due = append(due, DuePlanting{
				Plant:            garden.Plant,
				Planting:         gp,
				NextWateringDate: gp.NextWateringDate(garden.Plant.WateringInterval),
			})
		}
	}
	return due, nil
}

// InsertGardenPlanting inserts a planting and returns its assigned id.
func (s *Store) InsertGardenPlanting(ctx context.Context, planting entities.GardenPlanting) (int64, error) {
	planting.Plant = nil
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&planting).Error; err != nil {
		return 0, err
	}
	return planting.ID, nil
}

// DeleteGardenPlanting deletes the row matching the planting's id and plant id.
// Deleting a planting that no longer exists is not an error.
func (s *Store) DeleteGardenPlanting(ctx context.Context, planting entities.GardenPlanting) error {
	return s.db.WithContext(ctx).
		Where("id = ? AND plant_id = ?", planting.ID, planting.PlantID).
		Delete(&entities.GardenPlanting{}).Error
}

// WatchGardenPlantings streams GetGardenPlantings.
func (s *Store) WatchGardenPlantings(ctx context.Context) *live.Stream[[]entities.GardenPlanting] {
	return live.Watch(ctx, s.notifier, s.GetGardenPlantings, tableGardenPlantings)
}

// WatchIsPlanted streams IsPlanted for one plant.
func (s *Store) WatchIsPlanted(ctx context.Context, plantID string) *live.Stream[bool] {
	return live.Watch(ctx, s.notifier, func(ctx context.Context) (bool, error) {
		return s.IsPlanted(ctx, plantID)
	}, tableGardenPlantings)
}

// WatchPlantedGardens streams GetPlantedGardens.
func (s *Store) WatchPlantedGardens(ctx context.Context) *live.Stream[[]entities.PlantAndGardenPlantings] {
	return live.Watch(ctx, s.notifier, s.GetPlantedGardens, tablePlants, tableGardenPlantings)
}
