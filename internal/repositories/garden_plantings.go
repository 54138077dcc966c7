package repositories

import (
	"context"
	"time"

	"github.com/mrlokans/sunflower/internal/database/plantings"
	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/live"
)

// GardenPlantingRepository serves the user's garden.
type GardenPlantingRepository struct {
	store *plantings.Store
	now   func() time.Time
}

func NewGardenPlantingRepository(store *plantings.Store) *GardenPlantingRepository {
	return &GardenPlantingRepository{store: store, now: time.Now}
}

// CreateGardenPlanting plants plantID now and returns the new planting.
func (r *GardenPlantingRepository) CreateGardenPlanting(ctx context.Context, plantID string) (entities.GardenPlanting, error) {
	planting := entities.NewGardenPlanting(plantID, r.now().UTC())
	id, err := r.store.InsertGardenPlanting(ctx, planting)
	if err != nil {
		return entities.GardenPlanting{}, err
	}
	planting.ID = id
	return planting, nil
}

func (r *GardenPlantingRepository) RemoveGardenPlanting(ctx context.Context, planting entities.GardenPlanting) error {
	return r.store.DeleteGardenPlanting(ctx, planting)
}

func (r *GardenPlantingRepository) IsPlanted(ctx context.Context, plantID string) *live.Stream[bool] {
	return r.store.WatchIsPlanted(ctx, plantID)
}

func (r *GardenPlantingRepository) GetPlantedGardens(ctx context.Context) *live.Stream[[]entities.PlantAndGardenPlantings] {
	return r.store.WatchPlantedGardens(ctx)
}

func (r *GardenPlantingRepository) GetGardenPlantings(ctx context.Context) *live.Stream[[]entities.GardenPlanting] {
	return r.store.WatchGardenPlantings(ctx)
}

// FindGardenPlanting returns plantings.ErrPlantingNotFound for an unknown id.
func (r *GardenPlantingRepository) FindGardenPlanting(ctx context.Context, id int64) (*entities.GardenPlanting, error) {
	return r.store.GetGardenPlanting(ctx, id)
}

func (r *GardenPlantingRepository) FindGardenPlantings(ctx context.Context) ([]entities.GardenPlanting, error) {
	return r.store.GetGardenPlantings(ctx)
}

func (r *GardenPlantingRepository) FindPlantedGardens(ctx context.Context) ([]entities.PlantAndGardenPlantings, error) {
	return r.store.GetPlantedGardens(ctx)
}

func (r *GardenPlantingRepository) IsPlantedNow(ctx context.Context, plantID string) (bool, error) {
	return r.store.IsPlanted(ctx, plantID)
}

// DueForWatering returns the plantings that need water at the current time.
func (r *GardenPlantingRepository) DueForWatering(ctx context.Context) ([]plantings.DuePlanting, error) {
	return r.store.GetPlantingsDueForWatering(ctx, r.now().UTC())
}
