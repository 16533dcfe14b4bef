package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

type Task struct {
	ID               uint64         `gorm:"primarykey" json:"id"`
	Title            string         `gorm:"type:varchar(200);not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	AssigneeID       uint64         `gorm:"not null;index" json:"assignee_id"`
	CreatorID        uint64         `gorm:"not null;index" json:"creator_id"`
	DueDate          time.Time      `json:"due_date"`
	Status           TaskStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CompletionReport *string        `gorm:"type:text" json:"-"`
	WorkedHours      *float64       `gorm:"type:decimal(5,2)" json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	CompletedAt      *time.Time     `json:"completed_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Assignee User `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Creator  User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

// CanViewReport reports whether a user may read this task's completion report.
// True for superadmins, for the admin managing the assignee, and for the
// assignee themselves.
func (t *Task) CanViewReport(u *User) bool {
	if u.IsSuperadmin() {
		return true
	}
	if u.IsAdmin() && t.Assignee.AssignedAdminID != nil && *t.Assignee.AssignedAdminID == u.ID {
		return true
	}
	return u.ID == t.AssigneeID
}
