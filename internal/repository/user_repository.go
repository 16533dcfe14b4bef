package repository

import (
	"github.com/torisawa/task-assignment-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByRole lists users with the given role, newest first
func (r *GormUserRepository) ListByRole(role models.Role) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("role = ?", role).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListManagedBy lists the regular users managed by an admin
func (r *GormUserRepository) ListManagedBy(adminID uint64) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("assigned_admin_id = ?", adminID).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CountByRole counts users with the given role
func (r *GormUserRepository) CountByRole(role models.Role) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

// CountManagedBy counts the regular users managed by an admin
func (r *GormUserRepository) CountManagedBy(adminID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("assigned_admin_id = ?", adminID).Count(&count).Error
	return count, err
}

// Delete deletes a user and all related data in a transaction.
// Tasks created by or assigned to the user are removed, and users managed
// by a deleted admin lose their managing-admin reference.
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignee_id = ? OR creator_id = ?", id, id).
			Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("assigned_admin_id = ?", id).
			Update("assigned_admin_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
}
