package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/sunflower/internal/database"
	"github.com/mrlokans/sunflower/internal/tasks"
)

func serveHealth(controller *HealthController) (*httptest.ResponseRecorder, HealthResponse, error) {
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var response HealthResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	return w, response, err
}

func TestHealthController_Status(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("reports seeded catalog", func(t *testing.T) {
		env := setupTestEnv(t)

		w, response, err := serveHealth(NewHealthController(env.db, nil, "1.0.0"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Equal(t, "v1", response.Checks["schema"])
		assert.Equal(t, "3 plants", response.Checks["catalog"])
		assert.Equal(t, "no plantings", response.Checks["garden"])
		assert.Equal(t, "disabled", response.Checks["tasks"])
		assert.Contains(t, response.Time, "T")
	})

	t.Run("counts plantings", func(t *testing.T) {
		env := setupTestEnv(t)
		_, err := env.gardens.CreateGardenPlanting(context.Background(), "apple")
		require.NoError(t, err)

		_, response, err := serveHealth(NewHealthController(env.db, nil, ""))
		require.NoError(t, err)
		assert.Equal(t, "1 planting", response.Checks["garden"])
	})

	t.Run("empty catalog is still healthy", func(t *testing.T) {
		db, err := database.NewDatabase(filepath.Join(t.TempDir(), "empty.db"), database.WithLogLevel(logger.Silent))
		require.NoError(t, err)
		defer db.Close()

		w, response, err := serveHealth(NewHealthController(db, nil, ""))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "empty", response.Checks["catalog"])
		assert.Empty(t, response.Version)
	})

	t.Run("reports task queue", func(t *testing.T) {
		env := setupTestEnv(t)
		client, err := tasks.NewClient(env.db.Path(), tasks.DefaultConfig())
		require.NoError(t, err)
		defer client.Close()

		_, response, err := serveHealth(NewHealthController(env.db, client, "1.0.0"))
		require.NoError(t, err)
		assert.Equal(t, "no queues", response.Checks["tasks"])

		client.Register(tasks.NewWateringReminderQueue(nil))
		_, response, err = serveHealth(NewHealthController(env.db, client, "1.0.0"))
		require.NoError(t, err)
		assert.Equal(t, "idle: watering_reminders", response.Checks["tasks"])
	})

	t.Run("nil database is not configured", func(t *testing.T) {
		w, response, err := serveHealth(NewHealthController(nil, nil, "1.0.0"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "not configured", response.Checks["database"])
		assert.NotContains(t, response.Checks, "catalog")
	})

	t.Run("closed database is unhealthy", func(t *testing.T) {
		db, err := database.NewDatabase(filepath.Join(t.TempDir(), "closed.db"), database.WithLogLevel(logger.Silent))
		require.NoError(t, err)
		require.NoError(t, db.Close())

		w, response, err := serveHealth(NewHealthController(db, nil, "1.0.0"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "error")
	})
}

func TestPing(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, "GET", "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, "GET", "/ping", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "img-src 'self' data: https:")
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestStrictTransportSecurity(t *testing.T) {
	env := setupTestEnv(t, func(cfg *RouterConfig) { cfg.SecureCookies = true })

	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=31536000")
}
