package dto

import (
	"github.com/torisawa/task-assignment-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID              uint64      `json:"id"`
	Username        string      `json:"username"`
	Email           string      `json:"email,omitempty"`
	FirstName       string      `json:"first_name,omitempty"`
	LastName        string      `json:"last_name,omitempty"`
	Role            models.Role `json:"role"`
	AssignedAdminID *uint64     `json:"assigned_admin_id,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Role:            user.Role,
		AssignedAdminID: user.AssignedAdminID,
	}
}
