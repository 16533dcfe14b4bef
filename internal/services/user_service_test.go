package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/torisawa/task-assignment-api/internal/database"
	"github.com/torisawa/task-assignment-api/internal/models"
	"github.com/torisawa/task-assignment-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUserServiceTest(t *testing.T) (*gorm.DB, *UserService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))
	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	svc := NewUserService(userRepo, taskRepo)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, svc
}

func seedUser(t *testing.T, db *gorm.DB, username string, role models.Role, assignedAdminID *uint64) *models.User {
	t.Helper()

	user := &models.User{
		Username:        username,
		PasswordHash:    "hashedpassword",
		Role:            role,
		AssignedAdminID: assignedAdminID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestUserService_CreateUser(t *testing.T) {
	db, svc := setupUserServiceTest(t)
	admin := seedUser(t, db, "chief", models.RoleAdmin, nil)

	user, err := svc.CreateUser(CreateUserInput{
		Username:        "  worker  ",
		Email:           "worker@example.com",
		FirstName:       "Wo",
		LastName:        "Rker",
		Password:        "longenough",
		Role:            models.RoleUser,
		AssignedAdminID: &admin.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "worker", user.Username)
	require.Equal(t, models.RoleUser, user.Role)
	require.NotNil(t, user.AssignedAdminID)
	require.Equal(t, admin.ID, *user.AssignedAdminID)

	// Password is stored hashed
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longenough")))
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	db, svc := setupUserServiceTest(t)
	seedUser(t, db, "taken", models.RoleUser, nil)
	regular := seedUser(t, db, "regular", models.RoleUser, nil)

	_, err := svc.CreateUser(CreateUserInput{Username: "", Password: "longenough", Role: models.RoleUser})
	require.ErrorIs(t, err, ErrUsernameRequired)

	_, err = svc.CreateUser(CreateUserInput{Username: "short", Password: "tiny", Role: models.RoleUser})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.CreateUser(CreateUserInput{Username: "taken", Password: "longenough", Role: models.RoleUser})
	require.ErrorIs(t, err, ErrUsernameTaken)

	// No endpoint may mint a superadmin
	_, err = svc.CreateUser(CreateUserInput{Username: "boss", Password: "longenough", Role: models.RoleSuperadmin})
	require.ErrorIs(t, err, ErrInvalidRole)

	// The managing-admin reference must point at an admin
	_, err = svc.CreateUser(CreateUserInput{
		Username:        "worker",
		Password:        "longenough",
		Role:            models.RoleUser,
		AssignedAdminID: &regular.ID,
	})
	require.ErrorIs(t, err, ErrInvalidAssignedAdmin)
}

func TestUserService_CreateAdmin_IgnoresAssignedAdmin(t *testing.T) {
	db, svc := setupUserServiceTest(t)
	admin := seedUser(t, db, "chief", models.RoleAdmin, nil)

	// The managing-admin relation is meaningful only for regular users
	created, err := svc.CreateUser(CreateUserInput{
		Username:        "secondchief",
		Password:        "longenough",
		Role:            models.RoleAdmin,
		AssignedAdminID: &admin.ID,
	})
	require.NoError(t, err)
	require.Nil(t, created.AssignedAdminID)
}

func TestUserService_DeleteUser(t *testing.T) {
	db, svc := setupUserServiceTest(t)
	root := seedUser(t, db, "root", models.RoleSuperadmin, nil)
	admin := seedUser(t, db, "chief", models.RoleAdmin, nil)
	worker := seedUser(t, db, "worker", models.RoleUser, &admin.ID)

	require.ErrorIs(t, svc.DeleteUser(root.ID, root.ID), ErrCannotDeleteSelf)
	require.ErrorIs(t, svc.DeleteUser(root.ID, 99999), ErrUserNotFound)

	// Deleting an admin detaches their managed users
	require.NoError(t, svc.DeleteUser(root.ID, admin.ID))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, worker.ID).Error)
	require.Nil(t, reloaded.AssignedAdminID)
}

func TestUserService_GetDashboardStats(t *testing.T) {
	db, svc := setupUserServiceTest(t)
	root := seedUser(t, db, "root", models.RoleSuperadmin, nil)
	admin := seedUser(t, db, "chief", models.RoleAdmin, nil)
	worker := seedUser(t, db, "worker", models.RoleUser, &admin.ID)
	outsider := seedUser(t, db, "outsider", models.RoleUser, nil)

	now := time.Now()
	tasks := []models.Task{
		{Title: "a", AssigneeID: worker.ID, CreatorID: admin.ID, DueDate: now, Status: models.TaskStatusCompleted, CompletedAt: &now},
		{Title: "b", AssigneeID: worker.ID, CreatorID: admin.ID, DueDate: now, Status: models.TaskStatusPending},
		{Title: "c", AssigneeID: outsider.ID, CreatorID: root.ID, DueDate: now, Status: models.TaskStatusCompleted, CompletedAt: &now},
	}
	for i := range tasks {
		require.NoError(t, db.Create(&tasks[i]).Error)
	}

	rootStats, err := svc.GetDashboardStats(root)
	require.NoError(t, err)
	require.Equal(t, int64(2), rootStats.TotalUsers)
	require.Equal(t, int64(1), rootStats.TotalAdmins)
	require.Equal(t, int64(3), rootStats.TotalTasks)
	require.Equal(t, int64(2), rootStats.CompletedTasks)
	require.Len(t, rootStats.RecentTasks, 3)

	adminStats, err := svc.GetDashboardStats(admin)
	require.NoError(t, err)
	require.Equal(t, int64(1), adminStats.AssignedUsers)
	require.Equal(t, int64(2), adminStats.TotalTasks)
	require.Equal(t, int64(1), adminStats.CompletedTasks)
	require.Len(t, adminStats.RecentTasks, 2)
}
