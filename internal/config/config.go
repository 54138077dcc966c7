package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Seed
		Unsplash
		Images
		Tasks
		Reminders
		Sessions
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path     string
		LogLevel string // silent, error, warn, info
	}
	Seed struct {
		Filename string // Resource name inside the bundled seed assets
	}
	Unsplash struct {
		AccessKey string
		BaseURL   string
	}
	Images struct {
		CacheDir string // Defaults to "images" next to the database file
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Reminders struct {
		Enabled  bool
		Schedule string // Cron format: "0 8 * * *" = daily at 08:00
	}
	Sessions struct {
		Lifetime      time.Duration
		SecureCookies bool // Set to false for local dev without HTTPS
	}
)

// HasUnsplashKey reports whether a usable Unsplash access key is configured.
func (u Unsplash) HasUnsplashKey() bool {
	return u.AccessKey != "" && u.AccessKey != "null"
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_log_level", "warn")
	v.SetDefault("seed_filename", DefaultSeedFilename)
	v.SetDefault("unsplash_access_key", "")
	v.SetDefault("unsplash_base_url", DefaultUnsplashBaseURL)
	v.SetDefault("image_cache_dir", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Watering reminder defaults
	v.SetDefault("watering_reminders_enabled", true)
	v.SetDefault("watering_reminders_schedule", "0 8 * * *")

	// Session defaults
	v.SetDefault("session_lifetime", "720h")
	v.SetDefault("session_secure_cookies", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:     v.GetString("DATABASE_PATH"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		Seed: Seed{
			Filename: v.GetString("SEED_FILENAME"),
		},
		Unsplash: Unsplash{
			AccessKey: v.GetString("UNSPLASH_ACCESS_KEY"),
			BaseURL:   v.GetString("UNSPLASH_BASE_URL"),
		},
		Images: Images{
			CacheDir: v.GetString("IMAGE_CACHE_DIR"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Reminders: Reminders{
			Enabled:  v.GetBool("WATERING_REMINDERS_ENABLED"),
			Schedule: v.GetString("WATERING_REMINDERS_SCHEDULE"),
		},
		Sessions: Sessions{
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SESSION_SECURE_COOKIES"),
		},
	}
}
