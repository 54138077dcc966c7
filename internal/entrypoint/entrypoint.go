package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sunflower/internal/config"
	"github.com/mrlokans/sunflower/internal/database"
	"github.com/mrlokans/sunflower/internal/database/plantings"
	"github.com/mrlokans/sunflower/internal/database/plants"
	"github.com/mrlokans/sunflower/internal/gallery"
	http_controllers "github.com/mrlokans/sunflower/internal/http"
	"github.com/mrlokans/sunflower/internal/images"
	"github.com/mrlokans/sunflower/internal/repositories"
	"github.com/mrlokans/sunflower/internal/scheduler"
	"github.com/mrlokans/sunflower/internal/seed"
	"github.com/mrlokans/sunflower/internal/sessions"
	"github.com/mrlokans/sunflower/internal/tasks"
	"github.com/mrlokans/sunflower/internal/unsplash"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// SIGKILL cannot be caught, so only INT and TERM trigger a graceful stop.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so nothing writes to a closing database.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// NewTaskClient creates the task queue with the seed and reminder queues
// registered. Both queues reach the database through the shared instance,
// which may not be open yet when they are registered.
func NewTaskClient(cfg *config.Config) (*tasks.Client, error) {
	taskCfg := tasks.Config{
		Workers:         cfg.Tasks.Workers,
		ReleaseAfter:    cfg.Tasks.ReleaseAfter,
		CleanupInterval: cfg.Tasks.CleanupInterval,
	}

	client, err := tasks.NewClient(cfg.Database.Path, taskCfg)
	if err != nil {
		return nil, err
	}

	client.Register(
		tasks.NewSeedDatabaseQueue(seed.Assets, func() (tasks.PlantInserter, error) {
			db, err := database.GetInstance(cfg.Database.Path, databaseOptions(cfg, nil)...)
			if err != nil {
				return nil, err
			}
			return plants.NewStore(db.DB, db.Changes()), nil
		}),
		tasks.NewWateringReminderQueue(func() (tasks.DuePlantingsFinder, error) {
			db, err := database.GetInstance(cfg.Database.Path, databaseOptions(cfg, nil)...)
			if err != nil {
				return nil, err
			}
			return plantings.NewStore(db.DB, db.Changes()), nil
		}),
	)
	return client, nil
}

// OpenDatabase opens the shared database. A freshly created database is
// seeded with the bundled catalog: through the task queue when one is given,
// otherwise right away.
func OpenDatabase(cfg *config.Config, taskClient *tasks.Client) (*database.Database, error) {
	return database.GetInstance(cfg.Database.Path, databaseOptions(cfg, taskClient)...)
}

func databaseOptions(cfg *config.Config, taskClient *tasks.Client) []database.Option {
	return []database.Option{
		database.WithLogLevel(database.ParseLogLevel(cfg.Database.LogLevel)),
		database.WithOnCreate(func(db *database.Database) error {
			return seedCatalog(db, cfg.Seed.Filename, taskClient)
		}),
	}
}

func seedCatalog(db *database.Database, filename string, taskClient *tasks.Client) error {
	if taskClient != nil {
		id, err := taskClient.Enqueue(context.Background(), tasks.SeedDatabaseTask{Filename: filename})
		if err != nil {
			return fmt.Errorf("enqueue seed task: %w", err)
		}
		log.Printf("[SEED] New database, enqueued seed task %s", id)
		return nil
	}

	list, err := seed.LoadPlants(seed.Assets, filename)
	if err != nil {
		return err
	}
	if err := plants.NewStore(db.DB, db.Changes()).InsertAll(context.Background(), list); err != nil {
		return err
	}
	log.Printf("[SEED] New database, inserted %d plants from %s", len(list), filename)
	return nil
}

// ImageCacheDir returns the configured image cache directory, defaulting to
// "images" next to the database file.
func ImageCacheDir(cfg *config.Config) string {
	if cfg.Images.CacheDir != "" {
		return cfg.Images.CacheDir
	}
	if cfg.Database.Path == database.InMemoryPath {
		return filepath.Join(os.TempDir(), "sunflower-images")
	}
	return filepath.Join(filepath.Dir(cfg.Database.Path), "images")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Sunflower v%s", version)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		var err error
		taskClient, err = NewTaskClient(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()
	}

	db, err := OpenDatabase(cfg, taskClient)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.CloseInstance(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Start task workers in background
	taskCtx, taskCtxCancel := context.WithCancel(context.Background())
	defer taskCtxCancel()
	if taskClient != nil {
		taskClient.Start(taskCtx)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := sessions.NewSessionManager(sqlDB, cfg.Sessions)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	var reminders *scheduler.WateringReminderScheduler
	if cfg.Reminders.Enabled && taskClient != nil {
		reminders = scheduler.NewWateringReminderScheduler(taskClient, cfg.Reminders.Schedule)
		if err := reminders.Start(taskCtx); err != nil {
			log.Printf("WARNING: Failed to start watering reminders: %v", err)
			reminders = nil
		}
	} else if cfg.Reminders.Enabled {
		log.Printf("WARNING: Watering reminders need the task queue and are disabled")
	}

	var unsplashClient *unsplash.Client
	if cfg.Unsplash.HasUnsplashKey() {
		unsplashClient = unsplash.NewClient(cfg.Unsplash.BaseURL, cfg.Unsplash.AccessKey)
	} else {
		log.Printf("WARNING: Unsplash access key is not set. Photo search will be disabled. Set 'UNSPLASH_ACCESS_KEY' environment variable to enable.")
	}

	cacheDir := ImageCacheDir(cfg)
	imageCache, err := images.NewCache(cacheDir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize image cache: %v", err)
	} else {
		log.Printf("Image cache initialized at %s", cacheDir)
	}

	plantStore := plants.NewStore(db.DB, db.Changes())
	plantingStore := plantings.NewStore(db.DB, db.Changes())

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Plants:         repositories.NewPlantRepository(plantStore),
		Gardens:        repositories.NewGardenPlantingRepository(plantingStore),
		Unsplash:       unsplashClient,
		Gallery:        gallery.NewRunner(),
		ImageCache:     imageCache,
		TaskClient:     taskClient,
		Reminders:      reminders,
		SeedFilename:   cfg.Seed.Filename,
		SessionManager: sessionManager,
		SecureCookies:  cfg.Sessions.SecureCookies,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if reminders != nil {
			reminders.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		taskCtxCancel()
	}

	Serve(router, cfg, onShutdown)
}
