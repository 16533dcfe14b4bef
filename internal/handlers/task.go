package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/torisawa/task-assignment-api/internal/dto"
	apierrors "github.com/torisawa/task-assignment-api/internal/errors"
	"github.com/torisawa/task-assignment-api/internal/middleware"
	"github.com/torisawa/task-assignment-api/internal/models"
	"github.com/torisawa/task-assignment-api/internal/services"
)

// TaskHandler coordinates task-related HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
	authService *services.AuthService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, authService *services.AuthService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		authService: authService,
	}
}

// ListTasks returns all tasks assigned to the current user, newest first
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	tasks, err := h.taskService.ListTasks(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// UpdateTask applies a partial update to one of the caller's own tasks
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type UpdateTaskRequest struct {
		Status           *models.TaskStatus `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
		CompletionReport *string            `json:"completion_report"`
		WorkedHours      *float64           `json:"worked_hours" binding:"omitempty,gte=0"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(taskID, userID, services.UpdateTaskInput{
		Status:           req.Status,
		CompletionReport: req.CompletionReport,
		WorkedHours:      req.WorkedHours,
	})
	if err != nil {
		var validationErr *services.CompletionValidationError
		switch {
		case errors.As(err, &validationErr):
			apierrors.BadRequestWithDetails(c, validationErr.Error(), validationErr.Fields)
		case errors.Is(err, services.ErrTaskNotFound):
			apierrors.NotFound(c, err.Error())
		default:
			apierrors.InternalError(c, "Failed to update task")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// GetReport returns a task's completion report, gated by the visibility rule
func (h *TaskHandler) GetReport(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	viewer, err := h.authService.GetUser(userID)
	if err != nil {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, err := h.taskService.GetReport(viewer, taskID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			apierrors.NotFound(c, err.Error())
		case errors.Is(err, services.ErrReportAccessDenied):
			apierrors.Forbidden(c, err.Error())
		case errors.Is(err, services.ErrTaskNotCompleted):
			respondNotCompleted(c, err)
		default:
			apierrors.InternalError(c, "Failed to fetch report")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskReportDTO(*task))
}

// respondNotCompleted sends the business-rule 400 for a report requested
// before the task is completed.
func respondNotCompleted(c *gin.Context, err error) {
	apierrors.RespondWithError(c, http.StatusBadRequest,
		apierrors.NewAPIError(apierrors.ErrCodeInvalidOperation, err.Error()))
}
