package dto

import (
	"time"

	"github.com/torisawa/task-assignment-api/internal/models"
)

// TaskDTO represents a task in API responses. Completion report and worked
// hours are deliberately absent; they are only exposed through the report
// endpoint, which enforces its own visibility rule.
type TaskDTO struct {
	ID           uint64            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	AssigneeID   uint64            `json:"assigned_to"`
	AssigneeName string            `json:"assigned_to_name,omitempty"`
	CreatorID    uint64            `json:"created_by"`
	CreatorName  string            `json:"created_by_name,omitempty"`
	DueDate      time.Time         `json:"due_date"`
	Status       models.TaskStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	CompletedAt  *time.Time        `json:"completed_at"`
}

// TaskReportDTO represents a completion report in API responses
type TaskReportDTO struct {
	ID               uint64            `json:"id"`
	Title            string            `json:"title"`
	AssigneeName     string            `json:"assigned_to_name"`
	Status           models.TaskStatus `json:"status"`
	CompletionReport string            `json:"completion_report"`
	WorkedHours      float64           `json:"worked_hours"`
	CompletedAt      *time.Time        `json:"completed_at"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		AssigneeID:  task.AssigneeID,
		CreatorID:   task.CreatorID,
		DueDate:     task.DueDate,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		CompletedAt: task.CompletedAt,
	}

	// Display names are present only when the relations were preloaded
	if task.Assignee.ID != 0 {
		dto.AssigneeName = task.Assignee.DisplayName()
	}
	if task.Creator.ID != 0 {
		dto.CreatorName = task.Creator.DisplayName()
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks to DTOs
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}

// ToTaskReportDTO converts a completed task to its report representation
func ToTaskReportDTO(task models.Task) TaskReportDTO {
	dto := TaskReportDTO{
		ID:           task.ID,
		Title:        task.Title,
		AssigneeName: task.Assignee.DisplayName(),
		Status:       task.Status,
		CompletedAt:  task.CompletedAt,
	}

	if task.CompletionReport != nil {
		dto.CompletionReport = *task.CompletionReport
	}
	if task.WorkedHours != nil {
		dto.WorkedHours = *task.WorkedHours
	}

	return dto
}
