package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sunflower/internal/database"
	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/tasks"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db      *database.Database
	tasks   *tasks.Client
	version string
}

func NewHealthController(db *database.Database, taskClient *tasks.Client, version string) *HealthController {
	return &HealthController{
		db:      db,
		tasks:   taskClient,
		version: version,
	}
}

// Status handles GET /health
// Only an unreachable database makes the service unhealthy. An empty catalog
// means the seed task has not run yet.
func (h *HealthController) Status(c *gin.Context) {
	ctx := c.Request.Context()
	checks := map[string]string{"tasks": h.taskStatus()}

	healthy := true
	if h.db == nil {
		checks["database"] = "not configured"
	} else if err := h.ping(ctx); err != nil {
		checks["database"] = "error: " + err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
		checks["schema"] = h.schemaStatus()
		checks["catalog"] = h.countStatus(ctx, &entities.Plant{}, "plants", "empty")
		checks["garden"] = h.countStatus(ctx, &entities.GardenPlanting{}, "plantings", "no plantings")
	}

	resp := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}
	code := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, resp)
}

func (h *HealthController) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (h *HealthController) schemaStatus() string {
	version, err := h.db.SchemaVersion()
	if err != nil {
		return "error: " + err.Error()
	}
	return fmt.Sprintf("v%d", version)
}

func (h *HealthController) countStatus(ctx context.Context, model any, noun, empty string) string {
	var count int64
	if err := h.db.DB.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
		return "error: " + err.Error()
	}
	switch count {
	case 0:
		return empty
	case 1:
		return "1 " + strings.TrimSuffix(noun, "s")
	}
	return fmt.Sprintf("%d %s", count, noun)
}

func (h *HealthController) taskStatus() string {
	if h.tasks == nil {
		return "disabled"
	}
	queues := h.tasks.Queues()
	if len(queues) == 0 {
		return "no queues"
	}
	state := "idle"
	if h.tasks.Running() {
		state = "running"
	}
	return state + ": " + strings.Join(queues, ", ")
}
