package viewmodels

import (
	"context"
	"sync"

	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/live"
)

const (
	// NoGrowZone means the list is not filtered.
	NoGrowZone = -1
	// DefaultGrowZone is the zone the filter action selects.
	DefaultGrowZone = 9

	growZoneKey   = "growZone"
	growZoneTopic = "growZone"
)

// PlantSource is the part of PlantRepository the plant screens read.
type PlantSource interface {
	GetPlants(ctx context.Context) *live.Stream[[]entities.Plant]
	GetPlantsWithGrowZoneNumber(ctx context.Context, growZoneNumber int) *live.Stream[[]entities.Plant]
	GetPlant(ctx context.Context, plantID string) *live.Stream[entities.Plant]
}

// PlantListViewModel serves the catalog with an optional grow zone filter.
type PlantListViewModel struct {
	plants PlantSource
	state  SavedState
	hub    *live.Hub

	mu       sync.Mutex
	growZone int
}

// NewPlantListViewModel restores the filter from state, if one was saved.
func NewPlantListViewModel(state SavedState, plants PlantSource) *PlantListViewModel {
	growZone := NoGrowZone
	if zone, ok := intValue(state, growZoneKey); ok {
		growZone = zone
	}
	return &PlantListViewModel{
		plants:   plants,
		state:    state,
		hub:      live.NewHub(),
		growZone: growZone,
	}
}

// PlantListState builds the saved state for a list filtered to growZone.
func PlantListState(growZone int) MapState {
	return MapState{growZoneKey: growZone}
}

// Plants streams the catalog, switching to the filtered query whenever the
// filter changes.
func (vm *PlantListViewModel) Plants(ctx context.Context) *live.Stream[[]entities.Plant] {
	return live.Switch(ctx, vm.hub, func(ctx context.Context) *live.Stream[[]entities.Plant] {
		zone := vm.GrowZoneNumber()
		if zone == NoGrowZone {
			return vm.plants.GetPlants(ctx)
		}
		return vm.plants.GetPlantsWithGrowZoneNumber(ctx, zone)
	}, growZoneTopic)
}

func (vm *PlantListViewModel) SetGrowZoneNumber(num int) {
	vm.setGrowZone(num)
}

func (vm *PlantListViewModel) ClearGrowZoneNumber() {
	vm.setGrowZone(NoGrowZone)
}

func (vm *PlantListViewModel) IsFiltered() bool {
	return vm.GrowZoneNumber() != NoGrowZone
}

func (vm *PlantListViewModel) GrowZoneNumber() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.growZone
}

func (vm *PlantListViewModel) setGrowZone(num int) {
	vm.mu.Lock()
	changed := vm.growZone != num
	vm.growZone = num
	vm.mu.Unlock()

	vm.state.Set(growZoneKey, num)
	if changed {
		vm.hub.Notify(growZoneTopic)
	}
}
