package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sunflower/internal/viewmodels"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(StrictTransportSecurityMiddleware())
	}

	// Sessions give every browser a screen id for the gallery and
	// persist the catalog filter.
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// A nil *unsplash.Client must not become a non-nil interface.
	var keys viewmodels.KeyChecker
	if cfg.Unsplash != nil {
		keys = cfg.Unsplash
	}

	health := NewHealthController(cfg.Database, cfg.TaskClient, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	if cfg.Plants != nil && cfg.Gardens != nil {
		plantsController := NewPlantsController(cfg.Plants, cfg.Gardens, keys, cfg.ImageCache, cfg.SessionManager)
		router.GET("/api/plants", plantsController.List)
		router.GET("/api/plants/:id", plantsController.Get)
		router.GET("/api/plants/:id/planted", plantsController.IsPlanted)
		router.GET("/api/plants/:id/image", plantsController.Image)
		router.POST("/api/plants/:id/garden", plantsController.AddToGarden)

		router.GET("/api/filters/grow-zone", plantsController.GetFilter)
		router.PUT("/api/filters/grow-zone", plantsController.SetFilter)
		router.DELETE("/api/filters/grow-zone", plantsController.ClearFilter)

		gardenController := NewGardenController(cfg.Gardens)
		router.GET("/api/garden", gardenController.List)
		router.GET("/api/garden/plantings", gardenController.Plantings)
		router.GET("/api/garden/due", gardenController.Due)
		router.DELETE("/api/garden/plantings/:id", gardenController.Remove)

		liveController := NewLiveController(cfg.Plants, cfg.Gardens, keys, cfg.SessionManager)
		router.GET("/ws/garden", liveController.Garden)
		router.GET("/ws/plants", liveController.Plants)
		router.GET("/ws/plants/:id", liveController.PlantDetail)
	}

	galleryController := NewGalleryController(cfg.Unsplash, cfg.Gallery)
	router.GET("/api/gallery", galleryController.Search)
	router.DELETE("/api/gallery", galleryController.Cancel)

	// Task queue management endpoints (only if task client is available)
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, cfg.Reminders, cfg.SeedFilename)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	remindersController := NewRemindersController(cfg.Reminders)
	router.GET("/api/reminders", remindersController.Status)
	router.PUT("/api/reminders", remindersController.UpdateSchedule)

	return router
}
