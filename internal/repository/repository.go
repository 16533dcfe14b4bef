package repository

import (
	"github.com/torisawa/task-assignment-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// ListByRole lists users with the given role, newest first
	ListByRole(role models.Role) ([]models.User, error)

	// ListManagedBy lists the regular users managed by an admin
	ListManagedBy(adminID uint64) ([]models.User, error)

	// CountByRole counts users with the given role
	CountByRole(role models.Role) (int64, error)

	// CountManagedBy counts the regular users managed by an admin
	CountManagedBy(adminID uint64) (int64, error)

	// Delete deletes a user and cascades removal of their tasks
	Delete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindByIDForAssignee finds a task by ID only if it is assigned to the
	// given user; a task belonging to someone else behaves as not found
	FindByIDForAssignee(id, assigneeID uint64) (*models.Task, error)

	// ListForAssignee lists tasks assigned to a user, newest first
	ListForAssignee(assigneeID uint64) ([]models.Task, error)

	// ListVisibleTo lists tasks within the viewer's visibility scope, newest first
	ListVisibleTo(viewer *models.User, limit int) ([]models.Task, error)

	// CountVisibleTo counts tasks within the viewer's visibility scope,
	// optionally restricted to one status
	CountVisibleTo(viewer *models.User, status *models.TaskStatus) (int64, error)

	// Update persists all task fields
	Update(task *models.Task) error
}
