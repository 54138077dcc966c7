package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sunflower/internal/database/plantings"
	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/viewmodels"
)

// GardenController serves the user's garden.
type GardenController struct {
	gardens GardenStore
}

func NewGardenController(gardens GardenStore) *GardenController {
	return &GardenController{gardens: gardens}
}

// List handles GET /api/garden
// Returns one row per planted plant, formatted for display.
func (gc *GardenController) List(c *gin.Context) {
	ctx, cancel := snapshotContext(c)
	defer cancel()

	vm := viewmodels.NewGardenPlantingListViewModel(gc.gardens)
	items, err := vm.Items(ctx).First(ctx)
	if err != nil {
		respondInternalError(c, err, "garden list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Plantings handles GET /api/garden/plantings
func (gc *GardenController) Plantings(c *gin.Context) {
	list, err := gc.gardens.FindGardenPlantings(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "garden plantings")
		return
	}
	if list == nil {
		list = []entities.GardenPlanting{}
	}
	c.JSON(http.StatusOK, gin.H{"plantings": list})
}

// Due handles GET /api/garden/due
func (gc *GardenController) Due(c *gin.Context) {
	due, err := gc.gardens.DueForWatering(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "due for watering")
		return
	}
	if due == nil {
		due = []plantings.DuePlanting{}
	}
	c.JSON(http.StatusOK, gin.H{"due": due})
}

// Remove handles DELETE /api/garden/plantings/:id
func (gc *GardenController) Remove(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	planting, err := gc.gardens.FindGardenPlanting(c.Request.Context(), id)
	if errors.Is(err, plantings.ErrPlantingNotFound) {
		respondNotFound(c, "planting")
		return
	}
	if err != nil {
		respondInternalError(c, err, "find planting")
		return
	}

	if err := gc.gardens.RemoveGardenPlanting(c.Request.Context(), *planting); err != nil {
		respondInternalError(c, err, "remove planting")
		return
	}
	c.Status(http.StatusNoContent)
}
