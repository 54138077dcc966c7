// Package repositories exposes the data layer to view-models and handlers.
// Repositories forward to the stores without caching or validation.
package repositories

import (
	"context"

	"github.com/mrlokans/sunflower/internal/database/plants"
	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/live"
)

// PlantRepository serves the plant catalog.
type PlantRepository struct {
	store *plants.Store
}

func NewPlantRepository(store *plants.Store) *PlantRepository {
	return &PlantRepository{store: store}
}

func (r *PlantRepository) GetPlants(ctx context.Context) *live.Stream[[]entities.Plant] {
	return r.store.WatchPlants(ctx)
}

func (r *PlantRepository) GetPlantsWithGrowZoneNumber(ctx context.Context, growZoneNumber int) *live.Stream[[]entities.Plant] {
	return r.store.WatchPlantsWithGrowZoneNumber(ctx, growZoneNumber)
}

// GetPlant streams one plant. The stream stays silent while the plant does not exist.
func (r *PlantRepository) GetPlant(ctx context.Context, plantID string) *live.Stream[entities.Plant] {
	return r.store.WatchPlant(ctx, plantID)
}

// FindPlants returns the current catalog, optionally restricted to one grow zone.
func (r *PlantRepository) FindPlants(ctx context.Context, growZoneNumber *int) ([]entities.Plant, error) {
	if growZoneNumber != nil {
		return r.store.GetPlantsWithGrowZoneNumber(ctx, *growZoneNumber)
	}
	return r.store.GetPlants(ctx)
}

// FindPlant returns plants.ErrPlantNotFound for an unknown id.
func (r *PlantRepository) FindPlant(ctx context.Context, plantID string) (*entities.Plant, error) {
	return r.store.GetPlant(ctx, plantID)
}
