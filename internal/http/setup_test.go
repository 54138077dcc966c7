package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/sunflower/internal/config"
	"github.com/mrlokans/sunflower/internal/database"
	"github.com/mrlokans/sunflower/internal/database/plantings"
	"github.com/mrlokans/sunflower/internal/database/plants"
	"github.com/mrlokans/sunflower/internal/entities"
	"github.com/mrlokans/sunflower/internal/repositories"
	"github.com/mrlokans/sunflower/internal/sessions"
)

var testPlants = []entities.Plant{
	{ID: "apple", Name: "Apple", GrowZoneNumber: 3, WateringInterval: 30},
	{ID: "avocado", Name: "Avocado", GrowZoneNumber: 9, WateringInterval: 5},
	{ID: "tomato", Name: "Tomato", GrowZoneNumber: 9, WateringInterval: 4},
}

type testEnv struct {
	db       *database.Database
	plants   *repositories.PlantRepository
	gardens  *repositories.GardenPlantingRepository
	sessions *sessions.SessionManager
	router   *gin.Engine
}

// setupTestEnv builds a router over a seeded database. configure may adjust
// the router configuration before the router is built.
func setupTestEnv(t *testing.T, configure ...func(*RouterConfig)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"), database.WithLogLevel(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	plantStore := plants.NewStore(db.DB, db.Changes())
	require.NoError(t, plantStore.InsertAll(context.Background(), testPlants))

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sm, err := sessions.NewSessionManager(sqlDB, config.Sessions{Lifetime: time.Hour})
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		plants:   repositories.NewPlantRepository(plantStore),
		gardens:  repositories.NewGardenPlantingRepository(plantings.NewStore(db.DB, db.Changes())),
		sessions: sm,
	}

	cfg := RouterConfig{
		Database:       db,
		Plants:         env.plants,
		Gardens:        env.gardens,
		SessionManager: sm,
		Version:        "test",
	}
	for _, fn := range configure {
		fn(&cfg)
	}
	env.router = NewRouter(cfg)
	return env
}

// do performs a request against the router, sending cookies if given.
func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == e.sessions.Cookie.Name {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", e.sessions.Cookie.Name)
	return nil
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func plantNames(list []entities.Plant) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.Name
	}
	return out
}
