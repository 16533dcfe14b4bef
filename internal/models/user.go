package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

type User struct {
	ID              uint64         `gorm:"primarykey" json:"id"`
	Username        string         `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email           string         `gorm:"type:varchar(255)" json:"email"`
	FirstName       string         `gorm:"type:varchar(150)" json:"first_name"`
	LastName        string         `gorm:"type:varchar(150)" json:"last_name"`
	PasswordHash    string         `gorm:"type:varchar(255);not null" json:"-"`
	Role            Role           `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	AssignedAdminID *uint64        `gorm:"index" json:"assigned_admin_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	AssignedAdmin *User  `gorm:"foreignKey:AssignedAdminID" json:"-"`
	AssignedUsers []User `gorm:"foreignKey:AssignedAdminID" json:"-"`
	AssignedTasks []Task `gorm:"foreignKey:AssigneeID" json:"-"`
	CreatedTasks  []Task `gorm:"foreignKey:CreatorID" json:"-"`
}

func (u User) IsSuperadmin() bool {
	return u.Role == RoleSuperadmin
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) IsRegularUser() bool {
	return u.Role == RoleUser
}

// DisplayName returns the user's full name, falling back to the username
// when no name parts are set.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
