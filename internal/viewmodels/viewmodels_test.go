package viewmodels

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/sunflower/internal/database"
	"github.com/mrlokans/sunflower/internal/database/plantings"
	"github.com/mrlokans/sunflower/internal/database/plants"
	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/repositories"
	"github.com/mrlokans/sunflower/internal/unsplash"
)

var testPlants = []entities.Plant{
	{ID: "apple", Name: "Apple", GrowZoneNumber: 3, WateringInterval: 30},
	{ID: "avocado", Name: "Avocado", GrowZoneNumber: 9, WateringInterval: 5},
	{ID: "tomato", Name: "Tomato", GrowZoneNumber: 9, WateringInterval: 4},
}

type fixture struct {
	plants  *repositories.PlantRepository
	gardens *repositories.GardenPlantingRepository
}

func setupFixture(t *testing.T) fixture {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"), database.WithLogLevel(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	plantStore := plants.NewStore(db.DB, db.Changes())
	require.NoError(t, plantStore.InsertAll(context.Background(), testPlants))

	return fixture{
		plants:  repositories.NewPlantRepository(plantStore),
		gardens: repositories.NewGardenPlantingRepository(plantings.NewStore(db.DB, db.Changes())),
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func names(plants []entities.Plant) []string {
	out := make([]string, len(plants))
	for i, p := range plants {
		out[i] = p.Name
	}
	return out
}

type staticKey bool

func (k staticKey) HasValidAccessKey() bool { return bool(k) }

func TestPlantListViewModel_Filter(t *testing.T) {
	f := setupFixture(t)
	ctx := testContext(t)
	state := MapState{}

	vm := NewPlantListViewModel(state, f.plants)
	assert.False(t, vm.IsFiltered())

	stream := vm.Plants(ctx)
	all, err := stream.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "Avocado", "Tomato"}, names(all))

	vm.SetGrowZoneNumber(DefaultGrowZone)
	assert.True(t, vm.IsFiltered())
	assert.Equal(t, DefaultGrowZone, state[growZoneKey])

	filtered, err := stream.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Avocado", "Tomato"}, names(filtered))

	vm.ClearGrowZoneNumber()
	assert.False(t, vm.IsFiltered())

	all, err = stream.First(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPlantListViewModel_RestoresFilter(t *testing.T) {
	f := setupFixture(t)
	ctx := testContext(t)

	vm := NewPlantListViewModel(MapState{growZoneKey: 3}, f.plants)
	assert.True(t, vm.IsFiltered())
	assert.Equal(t, 3, vm.GrowZoneNumber())

	plants, err := vm.Plants(ctx).First(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple"}, names(plants))
}

func TestPlantListViewModel_SwitchesZones(t *testing.T) {
	f := setupFixture(t)
	ctx := testContext(t)

	vm := NewPlantListViewModel(MapState{}, f.plants)
	vm.SetGrowZoneNumber(3)

	stream := vm.Plants(ctx)
	first, err := stream.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple"}, names(first))

	vm.SetGrowZoneNumber(9)
	second, err := stream.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Avocado", "Tomato"}, names(second))
}

func TestPlantDetailViewModel_RequiresPlantID(t *testing.T) {
	f := setupFixture(t)

	_, err := NewPlantDetailViewModel(MapState{}, f.plants, f.gardens, nil)
	assert.ErrorIs(t, err, ErrMissingPlantID)

	_, err = NewPlantDetailViewModel(MapState{plantIDKey: 42}, f.plants, f.gardens, nil)
	assert.ErrorIs(t, err, ErrMissingPlantID)
}

func TestPlantDetailViewModel(t *testing.T) {
	f := setupFixture(t)
	ctx := testContext(t)

	vm, err := NewPlantDetailViewModel(PlantDetailState("tomato"), f.plants, f.gardens, staticKey(true))
	require.NoError(t, err)
	defer vm.Close()

	assert.Equal(t, "tomato", vm.PlantID())
	assert.True(t, vm.HasValidUnsplashKey())

	plant, err := vm.Plant(ctx).First(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Tomato", plant.Name)

	isPlanted := vm.IsPlanted(ctx)
	planted, err := isPlanted.First(ctx)
	require.NoError(t, err)
	assert.False(t, planted)

	select {
	case result := <-vm.AddPlantToGarden():
		require.NoError(t, result.Err)
		assert.Equal(t, "tomato", result.Planting.PlantID)
		assert.NotZero(t, result.Planting.ID)
	case <-ctx.Done():
		t.Fatal("add to garden did not finish")
	}

	planted, err = isPlanted.First(ctx)
	require.NoError(t, err)
	assert.True(t, planted)
}

func TestPlantDetailViewModel_AddUnknownPlantFails(t *testing.T) {
	f := setupFixture(t)

	vm, err := NewPlantDetailViewModel(PlantDetailState("ghost"), f.plants, f.gardens, staticKey(false))
	require.NoError(t, err)
	defer vm.Close()

	assert.False(t, vm.HasValidUnsplashKey())

	result, ok := <-vm.AddPlantToGarden()
	require.True(t, ok)
	assert.Error(t, result.Err)
}

func TestPlantDetailViewModel_CloseDropsResult(t *testing.T) {
	f := setupFixture(t)

	vm, err := NewPlantDetailViewModel(PlantDetailState("apple"), f.plants, f.gardens, nil)
	require.NoError(t, err)
	vm.Close()

	select {
	case result, ok := <-vm.AddPlantToGarden():
		assert.False(t, ok, "closed view-model should not deliver %+v", result)
	case <-time.After(5 * time.Second):
		t.Fatal("result channel was not closed")
	}
}

func TestGardenPlantingListViewModel(t *testing.T) {
	f := setupFixture(t)
	ctx := testContext(t)

	vm := NewGardenPlantingListViewModel(f.gardens)
	items := vm.Items(ctx)

	empty, err := items.First(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = f.gardens.CreateGardenPlanting(ctx, "avocado")
	require.NoError(t, err)

	list, err := items.First(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Avocado", list[0].PlantName)
	assert.Equal(t, 1, list[0].PlantingCount)
	assert.False(t, list[0].NeedsWater)
}

func TestNewPlantAndGardenPlantingsViewModel(t *testing.T) {
	planted := time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC)
	item := NewPlantAndGardenPlantingsViewModel(entities.PlantAndGardenPlantings{
		Plant: testPlants[2],
		GardenPlantings: []entities.GardenPlanting{
			{ID: 1, PlantID: "tomato", PlantDate: planted, LastWateringDate: planted},
			{ID: 2, PlantID: "tomato", PlantDate: planted.AddDate(0, 0, 1), LastWateringDate: planted.AddDate(0, 0, 1)},
		},
	}, planted.AddDate(0, 0, 5))

	assert.Equal(t, "Tomato", item.PlantName)
	assert.Equal(t, 2, item.PlantingCount)
	assert.Equal(t, "Mar 3, 2024", item.PlantDate)
	assert.Equal(t, "Mar 3, 2024", item.WaterDate)
	assert.Equal(t, "Mar 7, 2024", item.NextWaterDate)
	assert.True(t, item.NeedsWater)

	bare := NewPlantAndGardenPlantingsViewModel(entities.PlantAndGardenPlantings{Plant: testPlants[0]}, planted)
	assert.Empty(t, bare.PlantDate)
	assert.False(t, bare.NeedsWater)
}

func TestGalleryViewModel_SearchPictures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Tomato", r.URL.Query().Get("query"))
		assert.Equal(t, "25", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`{"total":1,"total_pages":1,"results":[{"id":"x","urls":{"small":"s"},"user":{"name":"n"}}]}`))
	}))
	defer server.Close()

	vm := NewGalleryViewModel(unsplash.NewClient(server.URL, "key", unsplash.WithMinInterval(0)))
	pager := vm.SearchPictures("Tomato")

	page, err := pager.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Photos, 1)
	assert.Equal(t, "x", page.Photos[0].ID)
	assert.False(t, pager.HasNext())
}
