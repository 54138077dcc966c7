// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, on-create hooks
//	├── instance.go      # Process-wide shared handle
//	├── invalidation.go  # Table change notifications for live queries
//	├── plants/          # Plant catalog queries
//	└── plantings/       # Garden plantings and the plant/planting join
//
// # Using Sub-packages
//
// Each sub-package provides a Store type built from the gorm handle and the
// change notifier:
//
//	db, err := database.GetInstance("./sunflower.db")
//
//	plantStore := plants.NewStore(db.DB, db.Changes())
//	plantingStore := plantings.NewStore(db.DB, db.Changes())
//
//	plant, err := plantStore.GetPlant(ctx, "malus-pumila")
//	stream := plantingStore.WatchPlantedGardens(ctx)
//
// # Live Queries
//
// Writes issued through gorm's Create, Update and Delete publish the affected
// table name once committed. Watch methods subscribe to those tables and
// re-run their query after every change. Raw Exec statements are not tracked;
// call Database.Invalidate after them.
package database
