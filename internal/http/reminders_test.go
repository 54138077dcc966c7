package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/sunflower/internal/scheduler"
)

type fakeEnqueuer struct{}

func (fakeEnqueuer) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	return "task-1", nil
}

func TestRemindersController_Disabled(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, "GET", "/api/reminders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ReminderStatus{}, decode[ReminderStatus](t, w))

	w = env.do(t, "PUT", "/api/reminders", gin.H{"schedule": "0 9 * * *"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "reminders_disabled", decode[ErrorResponse](t, w).Code)
}

func TestRemindersController_Reschedule(t *testing.T) {
	reminders := scheduler.NewWateringReminderScheduler(fakeEnqueuer{}, "0 8 * * *")
	require.NoError(t, reminders.Start(context.Background()))
	t.Cleanup(reminders.Stop)

	env := setupTestEnv(t, func(cfg *RouterConfig) { cfg.Reminders = reminders })

	w := env.do(t, "GET", "/api/reminders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[ReminderStatus](t, w)
	assert.True(t, status.Enabled)
	assert.True(t, status.Running)
	assert.Equal(t, "0 8 * * *", status.Schedule)

	w = env.do(t, "PUT", "/api/reminders", gin.H{"schedule": "every morning"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "PUT", "/api/reminders", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "0 8 * * *", reminders.Schedule())

	w = env.do(t, "PUT", "/api/reminders", gin.H{"schedule": "*/30 6-20 * * *"})
	require.Equal(t, http.StatusOK, w.Code)
	status = decode[ReminderStatus](t, w)
	assert.Equal(t, "*/30 6-20 * * *", status.Schedule)
	assert.True(t, status.Running, "a running scheduler keeps running after a reschedule")
	assert.Equal(t, "*/30 6-20 * * *", reminders.Schedule())
}
