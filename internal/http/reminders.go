package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sunflower/internal/scheduler"
)

// RemindersController exposes the watering reminder schedule.
type RemindersController struct {
	reminders *scheduler.WateringReminderScheduler
}

func NewRemindersController(reminders *scheduler.WateringReminderScheduler) *RemindersController {
	return &RemindersController{reminders: reminders}
}

// ReminderStatus describes the watering reminder schedule.
type ReminderStatus struct {
	Enabled  bool       `json:"enabled"`
	Running  bool       `json:"running"`
	Schedule string     `json:"schedule,omitempty"`
	NextRun  *time.Time `json:"next_run,omitempty"`
}

// UpdateScheduleRequest is the request body for changing the schedule.
type UpdateScheduleRequest struct {
	Schedule string `json:"schedule" binding:"required"`
}

// Status handles GET /api/reminders
func (rc *RemindersController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, rc.status())
}

// UpdateSchedule handles PUT /api/reminders
func (rc *RemindersController) UpdateSchedule(c *gin.Context) {
	if rc.reminders == nil {
		respondError(c, http.StatusServiceUnavailable, "reminders_disabled", "watering reminders are disabled")
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "schedule is required")
		return
	}
	if err := scheduler.ValidateCronSchedule(req.Schedule); err != nil {
		respondBadRequest(c, "invalid cron schedule: "+err.Error())
		return
	}

	// The scheduler outlives this request, so it must not inherit its context.
	if err := rc.reminders.Reschedule(context.Background(), req.Schedule); err != nil {
		respondInternalError(c, err, "reschedule reminders")
		return
	}
	c.JSON(http.StatusOK, rc.status())
}

func (rc *RemindersController) status() ReminderStatus {
	if rc.reminders == nil {
		return ReminderStatus{}
	}
	return ReminderStatus{
		Enabled:  true,
		Running:  rc.reminders.IsRunning(),
		Schedule: rc.reminders.Schedule(),
		NextRun:  rc.reminders.GetNextRunTime(),
	}
}
