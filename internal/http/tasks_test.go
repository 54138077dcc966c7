package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/sunflower/internal/database/plantings"
	"github.com/mrlokans/sunflower/internal/database/plants"
	"github.com/mrlokans/sunflower/internal/scheduler"
	"github.com/mrlokans/sunflower/internal/seed"
	"github.com/mrlokans/sunflower/internal/tasks"
)

type runTaskResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id"`
	Type    string `json:"type"`
}

// tasksEnv wires a running task queue into the router. withScheduler adds a
// watering reminder scheduler that is never started.
func tasksEnv(t *testing.T, withScheduler bool) (*testEnv, *tasks.Client) {
	t.Helper()

	env := setupTestEnv(t)

	cfg := tasks.DefaultConfig()
	cfg.Workers = 1
	client, err := tasks.NewClient(env.db.Path(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	client.Register(
		tasks.NewSeedDatabaseQueue(seed.Assets, func() (tasks.PlantInserter, error) {
			return plants.NewStore(env.db.DB, env.db.Changes()), nil
		}),
		tasks.NewWateringReminderQueue(func() (tasks.DuePlantingsFinder, error) {
			return plantings.NewStore(env.db.DB, env.db.Changes()), nil
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	client.Start(ctx)
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		client.Stop(stopCtx)
		cancel()
	})

	routerCfg := RouterConfig{
		Database:       env.db,
		Plants:         env.plants,
		Gardens:        env.gardens,
		SessionManager: env.sessions,
		TaskClient:     client,
		SeedFilename:   "plants.json",
	}
	if withScheduler {
		routerCfg.Reminders = scheduler.NewWateringReminderScheduler(client, "0 8 * * *")
	}
	env.router = NewRouter(routerCfg)
	return env, client
}

func waitForTask(t *testing.T, env *testEnv, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		w := env.do(t, "GET", "/api/tasks/"+id, nil)
		return w.Code == http.StatusOK && decode[map[string]any](t, w)["status"] == "success"
	}, 10*time.Second, 50*time.Millisecond)
}

func TestTasksController_ListTaskTypes(t *testing.T) {
	env, _ := tasksEnv(t, false)

	w := env.do(t, "GET", "/api/tasks/types", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[struct {
		TaskTypes []TaskTypeInfo `json:"task_types"`
	}](t, w)
	require.Len(t, resp.TaskTypes, 2)
	assert.Equal(t, tasks.SeedDatabaseQueue, resp.TaskTypes[0].Type)
	assert.Equal(t, tasks.WateringRemindersQueue, resp.TaskTypes[1].Type)
}

func TestTasksController_RunSeed(t *testing.T) {
	env, _ := tasksEnv(t, false)

	w := env.do(t, "POST", "/api/tasks/seed_database/run", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	resp := decode[runTaskResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, tasks.SeedDatabaseQueue, resp.Type)
	require.NotEmpty(t, resp.TaskID)

	waitForTask(t, env, resp.TaskID)

	count, err := plants.NewStore(env.db.DB, env.db.Changes()).Count(context.Background())
	require.NoError(t, err)
	assert.Greater(t, count, int64(len(testPlants)))
}

func TestTasksController_RunWateringReminders(t *testing.T) {
	for name, withScheduler := range map[string]bool{"direct": false, "through scheduler": true} {
		t.Run(name, func(t *testing.T) {
			env, _ := tasksEnv(t, withScheduler)

			w := env.do(t, "POST", "/api/tasks/watering_reminders/run", nil)
			require.Equal(t, http.StatusAccepted, w.Code)

			resp := decode[runTaskResponse](t, w)
			require.NotEmpty(t, resp.TaskID)
			waitForTask(t, env, resp.TaskID)
		})
	}
}

func TestTasksController_RunUnknownTask(t *testing.T) {
	env, _ := tasksEnv(t, false)

	w := env.do(t, "POST", "/api/tasks/compost/run", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "POST", "/api/tasks/seed_database/run", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTasksRoutesRequireClient(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, "GET", "/api/tasks/types", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
