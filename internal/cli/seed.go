package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mrlokans/sunflower/internal/config"
	"github.com/mrlokans/sunflower/internal/database"
	"github.com/mrlokans/sunflower/internal/database/plants"
	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/seed"
)

// SeedCommand loads a plant catalog into the database.
type SeedCommand struct {
	DatabasePath string
	File         string // seed file on disk; empty uses the bundled catalog
	Resource     string // bundled resource name
	Verbose      bool
	DryRun       bool

	Out io.Writer
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{Out: os.Stdout}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.File, "file", "", "JSON or YAML plant catalog to load instead of the bundled one")
	fs.StringVar(&cmd.Resource, "resource", config.DefaultSeedFilename, "Bundled catalog resource to load when -file is not given")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every plant loaded")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse the catalog without writing to the database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Load a plant catalog into the database. Plants with an existing id are replaced.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Reload the bundled catalog:\n")
		fmt.Fprintf(os.Stderr, "  %s seed -db ./sunflower.db\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview a custom catalog:\n")
		fmt.Fprintf(os.Stderr, "  %s seed -file my-plants.yaml -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.File == "" && cmd.Resource == "" {
		return fmt.Errorf("either -file or -resource must be set")
	}
	return nil
}

func (cmd *SeedCommand) Run() error {
	if cmd.Out == nil {
		cmd.Out = os.Stdout
	}

	fmt.Fprintln(cmd.Out, "Plant Catalog Seed")
	fmt.Fprintln(cmd.Out, "==================")

	if cmd.DryRun {
		fmt.Fprintln(cmd.Out, "DRY RUN MODE - No changes will be made")
	}

	list, source, err := cmd.load()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Out, "Found %d plants in %s\n", len(list), source)

	if cmd.Verbose {
		sorted := append([]entities.Plant(nil), list...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
		for i, p := range sorted {
			fmt.Fprintf(cmd.Out, "%d. %s (zone %d, water every %d days)\n", i+1, p.Name, p.GrowZoneNumber, p.WateringInterval)
		}
	}

	if cmd.DryRun {
		fmt.Fprintln(cmd.Out, "\nDry run complete. Use without -dry-run to seed.")
		return nil
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath, database.WithLogLevel(database.ParseLogLevel("silent")))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	store := plants.NewStore(db.DB, db.Changes())
	if err := store.InsertAll(context.Background(), list); err != nil {
		return fmt.Errorf("failed to insert plants: %w", err)
	}

	total, err := store.Count(context.Background())
	if err != nil {
		return fmt.Errorf("failed to count plants: %w", err)
	}

	fmt.Fprintf(cmd.Out, "\nSaved %d plants to %s (catalog now has %d)\n", len(list), absDBPath, total)
	return nil
}

func (cmd *SeedCommand) load() ([]entities.Plant, string, error) {
	if cmd.File != "" {
		list, err := seed.LoadFile(cmd.File)
		return list, cmd.File, err
	}
	list, err := seed.LoadPlants(seed.Assets, cmd.Resource)
	return list, "bundled " + cmd.Resource, err
}
