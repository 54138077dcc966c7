// Package seed loads the plant catalog used to populate a fresh database.
package seed

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/mrlokans/sunflower/internal/entities"
)

//go:embed data
var embeddedData embed.FS

// Assets is the bundled catalog, rooted so that "plants.json" opens directly.
var Assets fs.FS

func init() {
	sub, err := fs.Sub(embeddedData, "data")
	if err != nil {
		panic(fmt.Sprintf("seed: access embedded data: %v", err))
	}
	Assets = sub
}

var (
	ErrUnsupportedFormat = errors.New("unsupported seed file format")
	ErrMissingPlantID    = errors.New("seed entry has no plantId")
)

// LoadPlants reads and parses name from fsys.
func LoadPlants(fsys fs.FS, name string) ([]entities.Plant, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", name, err)
	}
	return ParsePlants(name, data)
}

// LoadFile reads and parses a seed file from disk.
func LoadFile(path string) ([]entities.Plant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return ParsePlants(path, data)
}

// ParsePlants decodes a JSON array of plants, or a YAML list when name ends in
// .yaml or .yml. Entries without a watering interval get the default one.
func ParsePlants(name string, data []byte) ([]entities.Plant, error) {
	var plants []entities.Plant

	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", "":
		if err := json.Unmarshal(data, &plants); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &plants); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	for i := range plants {
		if strings.TrimSpace(plants[i].ID) == "" {
			return nil, fmt.Errorf("%s entry %d: %w", name, i, ErrMissingPlantID)
		}
		if plants[i].WateringInterval <= 0 {
			plants[i].WateringInterval = entities.DefaultWateringInterval
		}
	}

	return plants, nil
}
