package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/sunflower/internal/database/plantings"
	"github.com/mrlokans/sunflower/internal/database/plants"
	"github.com/mrlokans/sunflower/internal/http"
	"github.com/mrlokans/sunflower/internal/live"
	"github.com/mrlokans/sunflower/internal/repositories"
	"github.com/mrlokans/sunflower/internal/scheduler"
	"github.com/mrlokans/sunflower/internal/sessions"
	"github.com/mrlokans/sunflower/internal/tasks"
	"github.com/mrlokans/sunflower/internal/unsplash"
	"github.com/mrlokans/sunflower/internal/viewmodels"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Repositories behind the HTTP controllers
var _ http.PlantStore = (*repositories.PlantRepository)(nil)
var _ http.GardenStore = (*repositories.GardenPlantingRepository)(nil)

// Repositories behind the view models
var _ viewmodels.PlantSource = (*repositories.PlantRepository)(nil)
var _ viewmodels.GardenSource = (*repositories.GardenPlantingRepository)(nil)

// Change notification
var _ live.Notifier = (*live.Hub)(nil)

// =============================================================================
// Background Work
// =============================================================================

// Task queue dependencies
var _ tasks.PlantInserter = (*plants.Store)(nil)
var _ tasks.DuePlantingsFinder = (*plantings.Store)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)

// =============================================================================
// External Services and Screen State
// =============================================================================

var _ unsplash.Searcher = (*unsplash.Client)(nil)
var _ viewmodels.KeyChecker = (*unsplash.Client)(nil)
var _ viewmodels.SavedState = (*sessions.SavedState)(nil)
var _ viewmodels.SavedState = viewmodels.MapState(nil)
