package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./sunflower.db"

	// DefaultSeedFilename is the bundled catalog resource loaded on first run
	DefaultSeedFilename = "plants.json"

	// DefaultUnsplashBaseURL is the Unsplash API root
	DefaultUnsplashBaseURL = "https://api.unsplash.com"
)
