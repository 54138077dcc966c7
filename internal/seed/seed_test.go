package seed

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/sunflower/internal/entities"
)

func TestLoadPlants_BundledCatalog(t *testing.T) {
	plants, err := LoadPlants(Assets, "plants.json")
	require.NoError(t, err)
	require.NotEmpty(t, plants)

	ids := make(map[string]bool, len(plants))
	for _, p := range plants {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.Positive(t, p.WateringInterval)
		assert.False(t, ids[p.ID], "duplicate plant id %s", p.ID)
		ids[p.ID] = true
	}
	assert.True(t, ids["malus-pumila"])
}

func TestLoadPlants_MissingFile(t *testing.T) {
	_, err := LoadPlants(Assets, "nope.json")
	assert.Error(t, err)
}

func TestParsePlants_JSON(t *testing.T) {
	data := []byte(`[
		{"plantId": "a", "name": "A", "description": "d", "growZoneNumber": 3, "wateringInterval": 5, "imageUrl": "http://x/a.jpg"},
		{"plantId": "b", "name": "B", "growZoneNumber": 4}
	]`)

	plants, err := ParsePlants("plants.json", data)
	require.NoError(t, err)
	require.Len(t, plants, 2)

	assert.Equal(t, entities.Plant{
		ID: "a", Name: "A", Description: "d", GrowZoneNumber: 3, WateringInterval: 5, ImageURL: "http://x/a.jpg",
	}, plants[0])
	assert.Equal(t, entities.DefaultWateringInterval, plants[1].WateringInterval)
}

func TestParsePlants_YAML(t *testing.T) {
	data := []byte(`
- plantId: tomato
  name: Tomato
  growZoneNumber: 9
  wateringInterval: 4
- plantId: basil
  name: Basil
  growZoneNumber: 10
`)

	for _, name := range []string{"plants.yaml", "PLANTS.YML"} {
		t.Run(name, func(t *testing.T) {
			plants, err := ParsePlants(name, data)
			require.NoError(t, err)
			require.Len(t, plants, 2)
			assert.Equal(t, "tomato", plants[0].ID)
			assert.Equal(t, 4, plants[0].WateringInterval)
			assert.Equal(t, 10, plants[1].GrowZoneNumber)
			assert.Equal(t, entities.DefaultWateringInterval, plants[1].WateringInterval)
		})
	}
}

func TestParsePlants_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		target   error
	}{
		{name: "malformed json", filename: "plants.json", data: `{"plantId":`},
		{name: "unsupported extension", filename: "plants.csv", data: `a,b`, target: ErrUnsupportedFormat},
		{name: "missing id", filename: "plants.json", data: `[{"name": "Nameless"}]`, target: ErrMissingPlantID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlants(tt.filename, []byte(tt.data))
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestLoadPlants_CustomFS(t *testing.T) {
	fsys := fstest.MapFS{
		"catalog/plants.yml": {Data: []byte("- plantId: x\n  name: X\n")},
	}

	plants, err := LoadPlants(fsys, "catalog/plants.yml")
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, "X", plants[0].Name)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plants.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"plantId":"f","name":"F","wateringInterval":2}]`), 0644))

	plants, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, 2, plants[0].WateringInterval)
}
