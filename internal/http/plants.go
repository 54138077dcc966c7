package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sunflower/internal/database/plants"
	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/images"
	"github.com/mrlokans/sunflower/internal/sessions"
	"github.com/mrlokans/sunflower/internal/viewmodels"
)

// plantListScreen names the session state of the catalog screen.
const plantListScreen = "plant_list"

// PlantsController serves the catalog and the plant detail screen.
type PlantsController struct {
	plants   PlantStore
	gardens  GardenStore
	keys     viewmodels.KeyChecker
	images   *images.Cache
	sessions *sessions.SessionManager
}

func NewPlantsController(plantStore PlantStore, gardens GardenStore, keys viewmodels.KeyChecker, cache *images.Cache, sm *sessions.SessionManager) *PlantsController {
	return &PlantsController{
		plants:   plantStore,
		gardens:  gardens,
		keys:     keys,
		images:   cache,
		sessions: sm,
	}
}

// PlantListResponse is the catalog screen.
type PlantListResponse struct {
	Plants   []entities.Plant `json:"plants"`
	Filtered bool             `json:"filtered"`
	GrowZone *int             `json:"growZone,omitempty"`
}

// GrowZoneFilter is the persisted catalog filter.
type GrowZoneFilter struct {
	Filtered bool `json:"filtered"`
	GrowZone *int `json:"growZone,omitempty"`
}

// SetGrowZoneRequest selects a grow zone. A missing zone selects the default.
type SetGrowZoneRequest struct {
	GrowZone *int `json:"growZone"`
}

// PlantDetailResponse is the plant detail screen.
type PlantDetailResponse struct {
	Plant               entities.Plant `json:"plant"`
	IsPlanted           bool           `json:"isPlanted"`
	HasValidUnsplashKey bool           `json:"hasValidUnsplashKey"`
}

// List handles GET /api/plants
// An explicit grow_zone query overrides the session filter for this request.
func (pc *PlantsController) List(c *gin.Context) {
	vm := pc.listViewModel(c)
	if raw, ok := c.GetQuery("grow_zone"); ok && raw != "" {
		zone, ok := parseIntQuery(c, "grow_zone", viewmodels.NoGrowZone)
		if !ok {
			return
		}
		vm = viewmodels.NewPlantListViewModel(viewmodels.PlantListState(zone), pc.plants)
	}

	ctx, cancel := snapshotContext(c)
	defer cancel()

	list, err := vm.Plants(ctx).First(ctx)
	if err != nil {
		respondInternalError(c, err, "list plants")
		return
	}
	if list == nil {
		list = []entities.Plant{}
	}

	resp := PlantListResponse{Plants: list, Filtered: vm.IsFiltered()}
	if vm.IsFiltered() {
		zone := vm.GrowZoneNumber()
		resp.GrowZone = &zone
	}
	c.JSON(http.StatusOK, resp)
}

// GetFilter handles GET /api/filters/grow-zone
func (pc *PlantsController) GetFilter(c *gin.Context) {
	c.JSON(http.StatusOK, filterOf(pc.listViewModel(c)))
}

// SetFilter handles PUT /api/filters/grow-zone
func (pc *PlantsController) SetFilter(c *gin.Context) {
	var req SetGrowZoneRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	zone := viewmodels.DefaultGrowZone
	if req.GrowZone != nil {
		zone = *req.GrowZone
	}
	if zone < 0 {
		respondBadRequest(c, "growZone must not be negative")
		return
	}

	vm := pc.listViewModel(c)
	vm.SetGrowZoneNumber(zone)
	c.JSON(http.StatusOK, filterOf(vm))
}

// ClearFilter handles DELETE /api/filters/grow-zone
func (pc *PlantsController) ClearFilter(c *gin.Context) {
	vm := pc.listViewModel(c)
	vm.ClearGrowZoneNumber()
	c.JSON(http.StatusOK, filterOf(vm))
}

// Get handles GET /api/plants/:id
func (pc *PlantsController) Get(c *gin.Context) {
	plant, ok := loadPlant(c, pc.plants)
	if !ok {
		return
	}

	vm, err := viewmodels.NewPlantDetailViewModel(viewmodels.PlantDetailState(plant.ID), pc.plants, pc.gardens, pc.keys)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	defer vm.Close()

	ctx, cancel := snapshotContext(c)
	defer cancel()

	planted, err := vm.IsPlanted(ctx).First(ctx)
	if err != nil {
		respondInternalError(c, err, "plant detail")
		return
	}

	c.JSON(http.StatusOK, PlantDetailResponse{
		Plant:               *plant,
		IsPlanted:           planted,
		HasValidUnsplashKey: vm.HasValidUnsplashKey(),
	})
}

// IsPlanted handles GET /api/plants/:id/planted
func (pc *PlantsController) IsPlanted(c *gin.Context) {
	plant, ok := loadPlant(c, pc.plants)
	if !ok {
		return
	}

	ctx, cancel := snapshotContext(c)
	defer cancel()

	planted, err := pc.gardens.IsPlanted(ctx, plant.ID).First(ctx)
	if err != nil {
		respondInternalError(c, err, "is planted")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plantId": plant.ID, "isPlanted": planted})
}

// AddToGarden handles POST /api/plants/:id/garden
func (pc *PlantsController) AddToGarden(c *gin.Context) {
	plant, ok := loadPlant(c, pc.plants)
	if !ok {
		return
	}

	vm, err := viewmodels.NewPlantDetailViewModel(viewmodels.PlantDetailState(plant.ID), pc.plants, pc.gardens, pc.keys)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	defer vm.Close()

	select {
	case result, ok := <-vm.AddPlantToGarden():
		if !ok {
			respondInternalError(c, errors.New("add to garden dropped"), "add to garden")
			return
		}
		if result.Err != nil {
			respondBadRequest(c, "could not add plant to garden: "+result.Err.Error())
			return
		}
		respondCreated(c, result.Planting)
	case <-c.Request.Context().Done():
		c.Status(http.StatusRequestTimeout)
	}
}

// Image handles GET /api/plants/:id/image
// refresh=true drops the cached copy before serving.
func (pc *PlantsController) Image(c *gin.Context) {
	plant, ok := loadPlant(c, pc.plants)
	if !ok {
		return
	}
	if plant.ImageURL == "" {
		respondNotFound(c, "image")
		return
	}

	if pc.images == nil {
		c.Redirect(http.StatusTemporaryRedirect, plant.ImageURL)
		return
	}

	if c.Query("refresh") == "true" {
		if err := pc.images.Invalidate(plant.ID); err != nil {
			log.Printf("Failed to invalidate image cache for plant %s: %v", plant.ID, err)
		}
	}

	cachePath, err := pc.images.Get(c.Request.Context(), plant.ID, plant.ImageURL)
	if err != nil || cachePath == "" {
		// Fallback: redirect to original URL
		c.Redirect(http.StatusTemporaryRedirect, plant.ImageURL)
		return
	}

	c.File(cachePath)
}

func (pc *PlantsController) listViewModel(c *gin.Context) *viewmodels.PlantListViewModel {
	return viewmodels.NewPlantListViewModel(savedState(pc.sessions, c, plantListScreen), pc.plants)
}

// loadPlant loads the :id plant or responds with 404.
func loadPlant(c *gin.Context, store PlantStore) (*entities.Plant, bool) {
	plant, err := store.FindPlant(c.Request.Context(), c.Param("id"))
	if errors.Is(err, plants.ErrPlantNotFound) {
		respondNotFound(c, "plant")
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "find plant")
		return nil, false
	}
	return plant, true
}

func filterOf(vm *viewmodels.PlantListViewModel) GrowZoneFilter {
	f := GrowZoneFilter{Filtered: vm.IsFiltered()}
	if f.Filtered {
		zone := vm.GrowZoneNumber()
		f.GrowZone = &zone
	}
	return f
}
