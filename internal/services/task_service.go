package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/torisawa/task-assignment-api/internal/models"
	"github.com/torisawa/task-assignment-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrInvalidAssignee    = errors.New("assignee does not exist or cannot be assigned tasks")
	ErrNotManagedUser     = errors.New("admins can only assign tasks to their managed users")
	ErrReportAccessDenied = errors.New("you do not have permission to view this task report")
	ErrTaskNotCompleted   = errors.New("task is not completed yet")
)

// CompletionValidationError reports which fields were missing from an update
// that tried to mark a task completed.
type CompletionValidationError struct {
	Fields map[string]string
}

func (e *CompletionValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	return "missing required fields: " + strings.Join(names, ", ")
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	AssigneeID  uint64
	DueDate     time.Time
}

// UpdateTaskInput represents the assignee-editable fields of a task.
// Nil pointers leave the field unchanged.
type UpdateTaskInput struct {
	Status           *models.TaskStatus
	CompletionReport *string
	WorkedHours      *float64
}

// ListTasks returns all tasks assigned to a user, newest first
func (s *TaskService) ListTasks(assigneeID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListForAssignee(assigneeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListVisibleTasks returns tasks within the viewer's visibility scope
func (s *TaskService) ListVisibleTasks(viewer *models.User) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListVisibleTo(viewer, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask creates a task on behalf of an admin or superadmin.
// Admins may only assign tasks to users they manage.
func (s *TaskService) CreateTask(creator *models.User, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	assignee, err := s.userRepo.FindByID(input.AssigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAssignee
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}
	if !assignee.IsRegularUser() {
		return nil, ErrInvalidAssignee
	}

	if creator.IsAdmin() {
		if assignee.AssignedAdminID == nil || *assignee.AssignedAdminID != creator.ID {
			return nil, ErrNotManagedUser
		}
	}

	task := &models.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		AssigneeID:  assignee.ID,
		CreatorID:   creator.ID,
		DueDate:     input.DueDate,
		Status:      models.TaskStatusPending,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Creator")
}

// UpdateTask applies a partial update to a task owned by the given assignee.
// Ownership is folded into the lookup: another user's task is reported as
// not found. An update that marks the task completed must itself carry a
// completion report and worked hours.
func (s *TaskService) UpdateTask(taskID, assigneeID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByIDForAssignee(taskID, assigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Status != nil && *input.Status == models.TaskStatusCompleted {
		fields := make(map[string]string)
		if input.CompletionReport == nil || strings.TrimSpace(*input.CompletionReport) == "" {
			fields["completion_report"] = "Completion report is required when marking task as completed."
		}
		if input.WorkedHours == nil || *input.WorkedHours == 0 {
			fields["worked_hours"] = "Worked hours is required when marking task as completed."
		}
		if len(fields) > 0 {
			return nil, &CompletionValidationError{Fields: fields}
		}
	}

	if input.CompletionReport != nil {
		task.CompletionReport = input.CompletionReport
	}
	if input.WorkedHours != nil {
		task.WorkedHours = input.WorkedHours
	}
	if input.Status != nil {
		// Stamp the completion timestamp only on the first transition
		if *input.Status == models.TaskStatusCompleted && task.CompletedAt == nil {
			now := time.Now()
			task.CompletedAt = &now
		}
		task.Status = *input.Status
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Creator")
}

// GetReport returns a completed task for report viewing.
// Existence is checked before permission, so a missing task is 404 even for
// callers who would not have been allowed to see it.
func (s *TaskService) GetReport(viewer *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !task.CanViewReport(viewer) {
		return nil, ErrReportAccessDenied
	}

	if task.Status != models.TaskStatusCompleted {
		return nil, ErrTaskNotCompleted
	}

	return task, nil
}

// GetTaskDetail returns a task for the console detail page, gated by the
// same report-visibility predicate as the API.
func (s *TaskService) GetTaskDetail(viewer *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignee", "Creator")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !task.CanViewReport(viewer) {
		return nil, ErrReportAccessDenied
	}

	return task, nil
}
