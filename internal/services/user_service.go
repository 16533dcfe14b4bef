package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/torisawa/task-assignment-api/internal/constants"
	"github.com/torisawa/task-assignment-api/internal/models"
	"github.com/torisawa/task-assignment-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrUsernameRequired     = errors.New("username is required")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidRole          = errors.New("role must be user or admin")
	ErrInvalidAssignedAdmin = errors.New("assigned admin must be an existing admin")
	ErrCannotDeleteSelf     = errors.New("you cannot delete yourself")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// UserService handles user management business logic
type UserService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, taskRepo repository.TaskRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		taskRepo: taskRepo,
	}
}

// CreateUserInput represents input for creating a user or admin
type CreateUserInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	Role            models.Role
	AssignedAdminID *uint64
}

// CreateUser creates a new user or admin account. Only regular users can be
// assigned a managing admin, and the reference must point at an admin.
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.Role != models.RoleUser && input.Role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	var assignedAdminID *uint64
	if input.Role == models.RoleUser && input.AssignedAdminID != nil {
		admin, err := s.userRepo.FindByID(*input.AssignedAdminID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidAssignedAdmin
			}
			return nil, fmt.Errorf("failed to find assigned admin: %w", err)
		}
		if !admin.IsAdmin() {
			return nil, ErrInvalidAssignedAdmin
		}
		assignedAdminID = &admin.ID
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:        username,
		Email:           strings.TrimSpace(input.Email),
		FirstName:       strings.TrimSpace(input.FirstName),
		LastName:        strings.TrimSpace(input.LastName),
		PasswordHash:    string(hashedPassword),
		Role:            input.Role,
		AssignedAdminID: assignedAdminID,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// DeleteUser deletes a user and cascades removal of their tasks.
// Self-deletion is rejected.
func (s *UserService) DeleteUser(actorID, targetID uint64) error {
	if actorID == targetID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.userRepo.FindByID(targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.Delete(targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

// ListUsersAndAdmins returns all regular users and all admins, newest first
func (s *UserService) ListUsersAndAdmins() ([]models.User, []models.User, error) {
	users, err := s.userRepo.ListByRole(models.RoleUser)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list users: %w", err)
	}

	admins, err := s.userRepo.ListByRole(models.RoleAdmin)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list admins: %w", err)
	}

	return users, admins, nil
}

// ListAssignableUsers returns the users the viewer may assign tasks to:
// every regular user for a superadmin, managed users for an admin.
func (s *UserService) ListAssignableUsers(viewer *models.User) ([]models.User, error) {
	if viewer.IsSuperadmin() {
		return s.userRepo.ListByRole(models.RoleUser)
	}
	return s.userRepo.ListManagedBy(viewer.ID)
}

// ListAdmins returns all admin accounts
func (s *UserService) ListAdmins() ([]models.User, error) {
	return s.userRepo.ListByRole(models.RoleAdmin)
}

// DashboardStats holds the counts shown on the console dashboard
type DashboardStats struct {
	TotalUsers     int64
	TotalAdmins    int64
	AssignedUsers  int64
	TotalTasks     int64
	CompletedTasks int64
	RecentTasks    []models.Task
}

// GetDashboardStats computes dashboard statistics scoped to the viewer's role
func (s *UserService) GetDashboardStats(viewer *models.User) (*DashboardStats, error) {
	stats := &DashboardStats{}
	completed := models.TaskStatusCompleted

	if viewer.IsSuperadmin() {
		var err error
		if stats.TotalUsers, err = s.userRepo.CountByRole(models.RoleUser); err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		if stats.TotalAdmins, err = s.userRepo.CountByRole(models.RoleAdmin); err != nil {
			return nil, fmt.Errorf("failed to count admins: %w", err)
		}
	} else {
		var err error
		if stats.AssignedUsers, err = s.userRepo.CountManagedBy(viewer.ID); err != nil {
			return nil, fmt.Errorf("failed to count managed users: %w", err)
		}
	}

	var err error
	if stats.TotalTasks, err = s.taskRepo.CountVisibleTo(viewer, nil); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	if stats.CompletedTasks, err = s.taskRepo.CountVisibleTo(viewer, &completed); err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	if stats.RecentTasks, err = s.taskRepo.ListVisibleTo(viewer, constants.RecentTaskCount); err != nil {
		return nil, fmt.Errorf("failed to list recent tasks: %w", err)
	}

	return stats, nil
}
