package http

import (
	"context"

	"github.com/mrlokans/sunflower/internal/database/plantings"
	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/viewmodels"
)

// Controllers read through the view-models for anything a screen shows and
// call the synchronous lookups for request validation (404s and the like).

// PlantStore is the catalog as the HTTP layer sees it.
type PlantStore interface {
	viewmodels.PlantSource
	FindPlants(ctx context.Context, growZoneNumber *int) ([]entities.Plant, error)
	FindPlant(ctx context.Context, plantID string) (*entities.Plant, error)
}

// GardenStore is the user's garden as the HTTP layer sees it.
type GardenStore interface {
	viewmodels.GardenSource
	RemoveGardenPlanting(ctx context.Context, planting entities.GardenPlanting) error
	FindGardenPlanting(ctx context.Context, id int64) (*entities.GardenPlanting, error)
	FindGardenPlantings(ctx context.Context) ([]entities.GardenPlanting, error)
	DueForWatering(ctx context.Context) ([]plantings.DuePlanting, error)
}
