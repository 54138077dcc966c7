package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/sunflower/internal/database/plants"
	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/images"
	"github.com/mrlokans/sunflower/internal/unsplash"
)

func TestPlantsController_List(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("whole catalog by name", func(t *testing.T) {
		w := env.do(t, "GET", "/api/plants", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[PlantListResponse](t, w)
		assert.Equal(t, []string{"Apple", "Avocado", "Tomato"}, plantNames(resp.Plants))
		assert.False(t, resp.Filtered)
		assert.Nil(t, resp.GrowZone)
	})

	t.Run("grow zone query", func(t *testing.T) {
		w := env.do(t, "GET", "/api/plants?grow_zone=9", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[PlantListResponse](t, w)
		assert.Equal(t, []string{"Avocado", "Tomato"}, plantNames(resp.Plants))
		assert.True(t, resp.Filtered)
		require.NotNil(t, resp.GrowZone)
		assert.Equal(t, 9, *resp.GrowZone)
	})

	t.Run("grow zone without plants", func(t *testing.T) {
		w := env.do(t, "GET", "/api/plants?grow_zone=12", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[PlantListResponse](t, w).Plants)
	})

	t.Run("invalid grow zone", func(t *testing.T) {
		w := env.do(t, "GET", "/api/plants?grow_zone=north", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPlantsController_GrowZoneFilterPersistsInSession(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, "PUT", "/api/filters/grow-zone", nil)
	require.Equal(t, http.StatusOK, w.Code)
	filter := decode[GrowZoneFilter](t, w)
	assert.True(t, filter.Filtered)
	require.NotNil(t, filter.GrowZone)
	assert.Equal(t, 9, *filter.GrowZone, "an empty request selects the default zone")

	cookie := env.sessionCookie(t, w)

	w = env.do(t, "GET", "/api/plants", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Avocado", "Tomato"}, plantNames(decode[PlantListResponse](t, w).Plants))

	// Another browser is unaffected.
	w = env.do(t, "GET", "/api/plants", nil)
	assert.Len(t, decode[PlantListResponse](t, w).Plants, 3)

	w = env.do(t, "PUT", "/api/filters/grow-zone", gin.H{"growZone": 3}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, "GET", "/api/filters/grow-zone", nil, cookie)
	filter = decode[GrowZoneFilter](t, w)
	require.NotNil(t, filter.GrowZone)
	assert.Equal(t, 3, *filter.GrowZone)

	w = env.do(t, "DELETE", "/api/filters/grow-zone", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[GrowZoneFilter](t, w).Filtered)

	w = env.do(t, "GET", "/api/plants", nil, cookie)
	assert.Len(t, decode[PlantListResponse](t, w).Plants, 3)
}

func TestPlantsController_SetFilterRejectsNegativeZone(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, "PUT", "/api/filters/grow-zone", gin.H{"growZone": -3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlantsController_Get(t *testing.T) {
	t.Run("plant detail", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(t, "GET", "/api/plants/apple", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[PlantDetailResponse](t, w)
		assert.Equal(t, testPlants[0], resp.Plant)
		assert.False(t, resp.IsPlanted)
		assert.False(t, resp.HasValidUnsplashKey)
	})

	t.Run("reports unsplash key", func(t *testing.T) {
		env := setupTestEnv(t, func(cfg *RouterConfig) {
			cfg.Unsplash = unsplash.NewClient("http://unused.invalid", "key")
		})

		w := env.do(t, "GET", "/api/plants/apple", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[PlantDetailResponse](t, w).HasValidUnsplashKey)
	})

	t.Run("missing plant", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(t, "GET", "/api/plants/baobab", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "plant not found", decode[ErrorResponse](t, w).Error)
	})
}

func TestPlantsController_AddToGarden(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, "GET", "/api/plants/apple/planted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["isPlanted"])

	w = env.do(t, "POST", "/api/plants/apple/garden", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	planting := decode[entities.GardenPlanting](t, w)
	assert.NotZero(t, planting.ID)
	assert.Equal(t, "apple", planting.PlantID)
	assert.True(t, planting.PlantDate.Equal(planting.LastWateringDate))

	w = env.do(t, "GET", "/api/plants/apple/planted", nil)
	assert.Equal(t, true, decode[map[string]any](t, w)["isPlanted"])

	w = env.do(t, "GET", "/api/plants/apple", nil)
	assert.True(t, decode[PlantDetailResponse](t, w).IsPlanted)

	// A second planting of the same plant is allowed.
	w = env.do(t, "POST", "/api/plants/apple/garden", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Greater(t, decode[entities.GardenPlanting](t, w).ID, planting.ID)

	w = env.do(t, "POST", "/api/plants/baobab/garden", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlantsController_Image(t *testing.T) {
	imageBytes := []byte("\x89PNG fake image")
	var fetches atomic.Int32
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tomato.png" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fetches.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(imageBytes)
	}))
	defer imageServer.Close()

	cache, err := images.NewCache(t.TempDir())
	require.NoError(t, err)

	env := setupTestEnv(t, func(cfg *RouterConfig) { cfg.ImageCache = cache })
	store := plants.NewStore(env.db.DB, env.db.Changes())
	require.NoError(t, store.InsertAll(context.Background(), []entities.Plant{
		{ID: "tomato", Name: "Tomato", GrowZoneNumber: 9, WateringInterval: 4, ImageURL: imageServer.URL + "/tomato.png"},
		{ID: "broken", Name: "Broken", GrowZoneNumber: 9, WateringInterval: 4, ImageURL: imageServer.URL + "/broken.png"},
	}))

	t.Run("downloads once then serves from cache", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			w := env.do(t, "GET", "/api/plants/tomato/image", nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, imageBytes, w.Body.Bytes())
		}
		assert.Equal(t, int32(1), fetches.Load())
	})

	t.Run("refresh downloads again", func(t *testing.T) {
		before := fetches.Load()
		w := env.do(t, "GET", "/api/plants/tomato/image?refresh=true", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, before+1, fetches.Load())
	})

	t.Run("failed download redirects to source", func(t *testing.T) {
		w := env.do(t, "GET", "/api/plants/broken/image", nil)
		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, imageServer.URL+"/broken.png", w.Header().Get("Location"))
	})

	t.Run("plant without image", func(t *testing.T) {
		w := env.do(t, "GET", "/api/plants/apple/image", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPlantsController_ImageWithoutCacheRedirects(t *testing.T) {
	env := setupTestEnv(t)
	store := plants.NewStore(env.db.DB, env.db.Changes())
	require.NoError(t, store.InsertAll(context.Background(), []entities.Plant{
		{ID: "tomato", Name: "Tomato", GrowZoneNumber: 9, WateringInterval: 4, ImageURL: "https://images.example/tomato.jpg"},
	}))

	w := env.do(t, "GET", "/api/plants/tomato/image", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://images.example/tomato.jpg", w.Header().Get("Location"))
}
