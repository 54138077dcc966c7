package viewmodels

import (
	"context"
	"time"

	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/live"
)

const dateLayout = "Jan 2, 2006"

// GardenPlantingListViewModel serves the plants in the garden.
type GardenPlantingListViewModel struct {
	gardens GardenSource
	now     func() time.Time
}

func NewGardenPlantingListViewModel(gardens GardenSource) *GardenPlantingListViewModel {
	return &GardenPlantingListViewModel{gardens: gardens, now: time.Now}
}

func (vm *GardenPlantingListViewModel) PlantAndGardenPlantings(ctx context.Context) *live.Stream[[]entities.PlantAndGardenPlantings] {
	return vm.gardens.GetPlantedGardens(ctx)
}

// Items streams the garden ready for display.
func (vm *GardenPlantingListViewModel) Items(ctx context.Context) *live.Stream[[]PlantAndGardenPlantingsViewModel] {
	return live.Map(ctx, vm.PlantAndGardenPlantings(ctx), func(gardens []entities.PlantAndGardenPlantings) []PlantAndGardenPlantingsViewModel {
		now := vm.now()
		items := make([]PlantAndGardenPlantingsViewModel, 0, len(gardens))
		for _, g := range gardens {
			items = append(items, NewPlantAndGardenPlantingsViewModel(g, now))
		}
		return items
	})
}

// PlantAndGardenPlantingsViewModel is one row of the garden list. Dates come
// from the plant's first planting.
type PlantAndGardenPlantingsViewModel struct {
	PlantID          string `json:"plantId"`
	PlantName        string `json:"plantName"`
	ImageURL         string `json:"imageUrl"`
	WateringInterval int    `json:"wateringInterval"`
	PlantingCount    int    `json:"plantingCount"`
	PlantDate        string `json:"plantDate,omitempty"`
	WaterDate        string `json:"waterDate,omitempty"`
	NextWaterDate    string `json:"nextWaterDate,omitempty"`
	NeedsWater       bool   `json:"needsWater"`
}

func NewPlantAndGardenPlantingsViewModel(p entities.PlantAndGardenPlantings, now time.Time) PlantAndGardenPlantingsViewModel {
	vm := PlantAndGardenPlantingsViewModel{
		PlantID:          p.Plant.ID,
		PlantName:        p.Plant.Name,
		ImageURL:         p.Plant.ImageURL,
		WateringInterval: p.Plant.WateringInterval,
		PlantingCount:    len(p.GardenPlantings),
	}
	if len(p.GardenPlantings) == 0 {
		return vm
	}

	first := p.GardenPlantings[0]
	vm.PlantDate = first.PlantDate.Format(dateLayout)
	vm.WaterDate = first.LastWateringDate.Format(dateLayout)
	vm.NextWaterDate = first.NextWateringDate(p.Plant.WateringInterval).Format(dateLayout)
	vm.NeedsWater = first.IsDueForWatering(now, p.Plant.WateringInterval)
	return vm
}
