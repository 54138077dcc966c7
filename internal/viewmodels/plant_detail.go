package viewmodels

import (
	"context"
	"errors"

	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/live"
)

const plantIDKey = "plantId"

// ErrMissingPlantID is returned when the saved state has no plant to show.
var ErrMissingPlantID = errors.New("saved state has no plantId")

// GardenSource is the part of GardenPlantingRepository the garden screens use.
type GardenSource interface {
	CreateGardenPlanting(ctx context.Context, plantID string) (entities.GardenPlanting, error)
	IsPlanted(ctx context.Context, plantID string) *live.Stream[bool]
	GetPlantedGardens(ctx context.Context) *live.Stream[[]entities.PlantAndGardenPlantings]
}

// KeyChecker reports whether photo search is configured.
type KeyChecker interface {
	HasValidAccessKey() bool
}

// AddResult is the outcome of AddPlantToGarden.
type AddResult struct {
	Planting entities.GardenPlanting
	Err      error
}

// PlantDetailViewModel serves one plant and whether it is in the garden.
type PlantDetailViewModel struct {
	scope

	plantID string
	plants  PlantSource
	gardens GardenSource
	keys    KeyChecker
}

// NewPlantDetailViewModel reads the plant id from state.
func NewPlantDetailViewModel(state SavedState, plants PlantSource, gardens GardenSource, keys KeyChecker) (*PlantDetailViewModel, error) {
	plantID, ok := stringValue(state, plantIDKey)
	if !ok || plantID == "" {
		return nil, ErrMissingPlantID
	}
	return &PlantDetailViewModel{
		scope:   newScope(),
		plantID: plantID,
		plants:  plants,
		gardens: gardens,
		keys:    keys,
	}, nil
}

// PlantDetailState builds the saved state for a detail screen.
func PlantDetailState(plantID string) MapState {
	return MapState{plantIDKey: plantID}
}

func (vm *PlantDetailViewModel) PlantID() string {
	return vm.plantID
}

// Plant streams the plant. Nothing is emitted while it does not exist.
func (vm *PlantDetailViewModel) Plant(ctx context.Context) *live.Stream[entities.Plant] {
	return vm.plants.GetPlant(ctx, vm.plantID)
}

func (vm *PlantDetailViewModel) IsPlanted(ctx context.Context) *live.Stream[bool] {
	return vm.gardens.IsPlanted(ctx, vm.plantID)
}

// AddPlantToGarden plants the plant in the background. The returned channel
// receives exactly one result unless the view-model is closed first.
func (vm *PlantDetailViewModel) AddPlantToGarden() <-chan AddResult {
	result := make(chan AddResult, 1)
	go func() {
		defer close(result)
		planting, err := vm.gardens.CreateGardenPlanting(vm.ctx, vm.plantID)
		if vm.ctx.Err() != nil {
			return
		}
		result <- AddResult{Planting: planting, Err: err}
	}()
	return result
}

func (vm *PlantDetailViewModel) HasValidUnsplashKey() bool {
	return vm.keys != nil && vm.keys.HasValidAccessKey()
}
