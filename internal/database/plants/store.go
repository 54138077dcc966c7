// Package plants provides catalog queries over the plants table.
//
// Every read has a Watch variant that returns a live.Stream re-emitting
// whenever the plants table changes.
//
//	store := plants.NewStore(db.DB, db.Changes())
//	stream := store.WatchPlantsWithGrowZoneNumber(ctx, 9)
package plants

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/live"
)

// ErrPlantNotFound is returned when no plant has the requested id.
var ErrPlantNotFound = errors.New("plant not found")

var tablePlants = entities.Plant{}.TableName()

// Store handles all catalog database operations.
type Store struct {
	db       *gorm.DB
	notifier live.Notifier
}

// NewStore creates a new catalog store.
func NewStore(db *gorm.DB, notifier live.Notifier) *Store {
	return &Store{db: db, notifier: notifier}
}

// GetPlants returns the whole catalog ordered by name.
func (s *Store) GetPlants(ctx context.Context) ([]entities.Plant, error) {
	var plants []entities.Plant
	err := s.db.WithContext(ctx).Order("name").Find(&plants).Error
	return plants, err
}

// GetPlantsWithGrowZoneNumber returns the plants of one grow zone ordered by name.
func (s *Store) GetPlantsWithGrowZoneNumber(ctx context.Context, growZoneNumber int) ([]entities.Plant, error) {
	var plants []entities.Plant
	err := s.db.WithContext(ctx).
		Where("grow_zone_number = ?", growZoneNumber).
		Order("name").
		Find(&plants).Error
	return plants, err
}

// GetPlant retrieves a plant by its catalog id.
func (s *Store) GetPlant(ctx context.Context, plantID string) (*entities.Plant, error) {
	var plant entities.Plant
	err := s.db.WithContext(ctx).Where("id = ?", plantID).First(&plant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plant, nil
}

// InsertAll inserts the plants, overwriting every column of rows whose id already exists.
func (s *Store) InsertAll(ctx context.Context, plants []entities.Plant) error {
	if len(plants) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		CreateInBatches(&plants, 100).Error
}

// Count returns the number of catalog entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entities.Plant{}).Count(&count).Error
	return count, err
}

// WatchPlants streams GetPlants.
func (s *Store) WatchPlants(ctx context.Context) *live.Stream[[]entities.Plant] {
	return live.Watch(ctx, s.notifier, s.GetPlants, tablePlants)
}

// WatchPlantsWithGrowZoneNumber streams GetPlantsWithGrowZoneNumber.
func (s *Store) WatchPlantsWithGrowZoneNumber(ctx context.Context, growZoneNumber int) *live.Stream[[]entities.Plant] {
	return live.Watch(ctx, s.notifier, func(ctx context.Context) ([]entities.Plant, error) {
		return s.GetPlantsWithGrowZoneNumber(ctx, growZoneNumber)
	}, tablePlants)
}

// WatchPlant streams one plant. A missing plant emits nothing rather than failing.
func (s *Store) WatchPlant(ctx context.Context, plantID string) *live.Stream[entities.Plant] {
	return live.Watch(ctx, s.notifier, func(ctx context.Context) (entities.Plant, error) {
		plant, err := s.GetPlant(ctx, plantID)
		if errors.Is(err, ErrPlantNotFound) {
			return entities.Plant{}, live.ErrNoValue
		}
		if err != nil {
			return entities.Plant{}, err
		}
		return *plant, nil
	}, tablePlants)
}
