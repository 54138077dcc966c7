package http

import (
	"github.com/mrlokans/sunflower/internal/database"
	"github.com/mrlokans/sunflower/internal/gallery"
	"github.com/mrlokans/sunflower/internal/images"
	"github.com/mrlokans/sunflower/internal/scheduler"
	"github.com/mrlokans/sunflower/internal/sessions"
	"github.com/mrlokans/sunflower/internal/tasks"
	"github.com/mrlokans/sunflower/internal/unsplash"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Plants   PlantStore
	Gardens  GardenStore

	// Photo search. Unsplash may be nil when no access key is configured.
	Unsplash *unsplash.Client
	Gallery  *gallery.Runner

	// Plant image caching. Nil serves redirects to the catalog URL.
	ImageCache *images.Cache

	// Background work. Both may be nil when tasks are disabled.
	TaskClient *tasks.Client
	Reminders  *scheduler.WateringReminderScheduler

	// SeedFilename is the catalog resource the seed task loads by default.
	SeedFilename string

	// Sessions give each browser a screen id and persisted view state.
	SessionManager *sessions.SessionManager
	SecureCookies  bool

	// Application info
	Version string
}
