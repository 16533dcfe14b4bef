package database

import (
	"gorm.io/gorm"

	"github.com/torisawa/task-assignment-api/internal/models"
)

// TasksVisibleTo restricts a task query to what the viewer may see:
// superadmins see everything, admins see tasks of their managed users,
// regular users see only their own tasks.
func TasksVisibleTo(viewer *models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case viewer.IsSuperadmin():
			return db
		case viewer.IsAdmin():
			managed := db.Session(&gorm.Session{NewDB: true}).
				Model(&models.User{}).
				Select("id").
				Where("assigned_admin_id = ?", viewer.ID)
			return db.Where("tasks.assignee_id IN (?)", managed)
		default:
			return db.Where("tasks.assignee_id = ?", viewer.ID)
		}
	}
}

// UsersVisibleTo restricts a user query to the viewer's management scope.
// Admins see their managed users; superadmins see everyone.
func UsersVisibleTo(viewer *models.User) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewer.IsSuperadmin() {
			return db
		}
		return db.Where("assigned_admin_id = ?", viewer.ID)
	}
}
