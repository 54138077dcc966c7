package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/sunflower/internal/scheduler"
	"github.com/mrlokans/sunflower/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	client       *tasks.Client
	reminders    *scheduler.WateringReminderScheduler
	seedFilename string
}

// NewTasksController creates a new TasksController. reminders may be nil,
// in which case reminder scans are enqueued directly.
func NewTasksController(client *tasks.Client, reminders *scheduler.WateringReminderScheduler, seedFilename string) *TasksController {
	return &TasksController{client: client, reminders: reminders, seedFilename: seedFilename}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// RunTaskRequest is the request body for running a task.
type RunTaskRequest struct {
	// Filename overrides the bundled catalog resource for seed_database.
	Filename string `json:"filename,omitempty"`
}

// ListTaskTypes handles GET /api/tasks/types
// Returns the list of available task types that can be triggered.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        tasks.SeedDatabaseQueue,
			Description: "Load the bundled plant catalog into the database",
			Queue:       tasks.SeedDatabaseQueue,
		},
		{
			Type:        tasks.WateringRemindersQueue,
			Description: "Report garden plantings that are due for watering",
			Queue:       tasks.WateringRemindersQueue,
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	statusStr := taskStatusToString(status)
	if status == backlite.TaskStatusNotFound {
		c.JSON(http.StatusNotFound, gin.H{"id": taskID, "status": statusStr})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": statusStr,
	})
}

// RunTask handles POST /api/tasks/:type/run
// Manually triggers a task of the specified type.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	var (
		taskID string
		err    error
	)
	switch taskType {
	case tasks.SeedDatabaseQueue:
		filename := req.Filename
		if filename == "" {
			filename = tc.seedFilename
		}
		taskID, err = tc.client.Enqueue(c.Request.Context(), tasks.SeedDatabaseTask{Filename: filename})

	case tasks.WateringRemindersQueue:
		if tc.reminders != nil {
			taskID, err = tc.reminders.RunNow(c.Request.Context())
		} else {
			taskID, err = tc.client.Enqueue(c.Request.Context(), tasks.WateringReminderTask{})
		}

	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	if err != nil {
		respondInternalError(c, err, "run task "+taskType)
		return
	}

	respondAccepted(c, gin.H{
		"success": true,
		"task_id": taskID,
		"type":    taskType,
		"message": "task enqueued",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
