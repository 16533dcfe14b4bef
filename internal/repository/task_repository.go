package repository

import (
	"github.com/torisawa/task-assignment-api/internal/database"
	"github.com/torisawa/task-assignment-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByIDForAssignee finds a task by ID scoped to its assignee.
// Returns gorm.ErrRecordNotFound for tasks assigned to anyone else, so the
// caller cannot tell another user's task apart from a missing one.
func (r *GormTaskRepository) FindByIDForAssignee(id, assigneeID uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Where("id = ? AND assignee_id = ?", id, assigneeID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListForAssignee lists tasks assigned to a user, newest first
func (r *GormTaskRepository) ListForAssignee(assigneeID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Preload("Assignee").Preload("Creator").
		Where("assignee_id = ?", assigneeID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListVisibleTo lists tasks within the viewer's visibility scope, newest first.
// A limit of 0 means no limit.
func (r *GormTaskRepository) ListVisibleTo(viewer *models.User, limit int) ([]models.Task, error) {
	var tasks []models.Task
	query := r.db.Preload("Assignee").Preload("Creator").
		Scopes(database.TasksVisibleTo(viewer)).
		Order("tasks.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountVisibleTo counts tasks within the viewer's visibility scope
func (r *GormTaskRepository) CountVisibleTo(viewer *models.User, status *models.TaskStatus) (int64, error) {
	var count int64
	query := r.db.Model(&models.Task{}).Scopes(database.TasksVisibleTo(viewer))
	if status != nil {
		query = query.Where("tasks.status = ?", *status)
	}
	err := query.Count(&count).Error
	return count, err
}

// Update persists all task fields
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}
