package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/torisawa/task-assignment-api/internal/constants"
	"github.com/torisawa/task-assignment-api/internal/database"
	"github.com/torisawa/task-assignment-api/internal/middleware"
	"github.com/torisawa/task-assignment-api/internal/models"
	"github.com/torisawa/task-assignment-api/internal/repository"
	"github.com/torisawa/task-assignment-api/internal/services"
	"github.com/torisawa/task-assignment-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConsoleHandlerTestSuite defines the test suite for the admin console
type ConsoleHandlerTestSuite struct {
	suite.Suite
	db          *gorm.DB
	router      *gin.Engine
	taskService *services.TaskService
}

// SetupTest runs before each test
func (suite *ConsoleHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{}, &models.Task{})
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	tokens := utils.NewTokenManager("test-secret", time.Minute, time.Hour)

	authService := services.NewAuthService(userRepo, tokens)
	suite.taskService = services.NewTaskService(taskRepo, userRepo)
	userService := services.NewUserService(userRepo, taskRepo)
	handler := NewConsoleHandler(authService, userService, suite.taskService)

	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.LoadHTMLGlob("../../web/templates/*.html")
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	console := r.Group("/console")
	console.GET("/login", handler.ShowLogin)
	console.POST("/login", handler.Login)

	authed := console.Group("")
	authed.Use(middleware.RequireConsoleUser(authService))
	authed.GET("/logout", handler.Logout)
	authed.GET("/dashboard", handler.Dashboard)
	authed.GET("/tasks", handler.TasksList)
	authed.GET("/tasks/create", handler.ShowCreateTask)
	authed.POST("/tasks/create", handler.CreateTask)
	authed.GET("/tasks/:id", handler.TaskDetail)

	super := authed.Group("/users")
	super.Use(middleware.RequireSuperadmin())
	super.GET("", handler.UsersList)
	super.GET("/create", handler.ShowCreateUser)
	super.POST("/create", handler.CreateUser)
	super.POST("/:id/delete", handler.DeleteUser)

	suite.router = r
}

// TearDownTest runs after each test
func (suite *ConsoleHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ConsoleHandlerTestSuite) createTestUser(username string, role models.Role, assignedAdminID *uint64) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	suite.Require().NoError(err)

	user := &models.User{
		Username:        username,
		PasswordHash:    string(hash),
		Role:            role,
		AssignedAdminID: assignedAdminID,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *ConsoleHandlerTestSuite) createTestTask(title string, assigneeID, creatorID uint64) *models.Task {
	task := &models.Task{
		Title:      title,
		AssigneeID: assigneeID,
		CreatorID:  creatorID,
		DueDate:    time.Now().Add(24 * time.Hour),
		Status:     models.TaskStatusPending,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

// login performs a console form login and returns the session cookies
func (suite *ConsoleHandlerTestSuite) login(username string) []*http.Cookie {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", "supersecret")

	req := httptest.NewRequest(http.MethodPost, "/console/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Require().Equal(http.StatusFound, w.Code)
	return w.Result().Cookies()
}

func (suite *ConsoleHandlerTestSuite) request(method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ConsoleHandlerTestSuite) TestLogin_RejectsRegularUsers() {
	suite.createTestUser("worker", models.RoleUser, nil)

	form := url.Values{}
	form.Set("username", "worker")
	form.Set("password", "supersecret")
	w := suite.request(http.MethodPost, "/console/login", form, nil)

	suite.Equal(http.StatusFound, w.Code)
	suite.Equal("/console/login", w.Header().Get("Location"))
}

func (suite *ConsoleHandlerTestSuite) TestLogin_AdminReachesDashboard() {
	suite.createTestUser("chief", models.RoleAdmin, nil)

	form := url.Values{}
	form.Set("username", "chief")
	form.Set("password", "supersecret")
	w := suite.request(http.MethodPost, "/console/login", form, nil)

	suite.Equal(http.StatusFound, w.Code)
	suite.Equal("/console/dashboard", w.Header().Get("Location"))
}

func (suite *ConsoleHandlerTestSuite) TestDashboard_AdminSeesOnlyManagedScope() {
	admin := suite.createTestUser("chief", models.RoleAdmin, nil)
	managed := suite.createTestUser("worker", models.RoleUser, &admin.ID)
	outsider := suite.createTestUser("outsider", models.RoleUser, nil)

	suite.createTestTask("managed task", managed.ID, admin.ID)
	suite.createTestTask("other task", outsider.ID, admin.ID)

	cookies := suite.login("chief")
	w := suite.request(http.MethodGet, "/console/dashboard", nil, cookies)

	suite.Require().Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	suite.Contains(body, "Assigned users: 1")
	suite.Contains(body, "Total tasks: 1")
	suite.Contains(body, "managed task")
	suite.NotContains(body, "other task")
}

func (suite *ConsoleHandlerTestSuite) TestUsersPage_SuperadminOnly() {
	suite.createTestUser("root", models.RoleSuperadmin, nil)
	suite.createTestUser("chief", models.RoleAdmin, nil)

	adminCookies := suite.login("chief")
	w := suite.request(http.MethodGet, "/console/users", nil, adminCookies)
	suite.Equal(http.StatusFound, w.Code)
	suite.Equal("/console/dashboard", w.Header().Get("Location"))

	rootCookies := suite.login("root")
	w = suite.request(http.MethodGet, "/console/users", nil, rootCookies)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *ConsoleHandlerTestSuite) TestCreateUser_WithAssignedAdmin() {
	suite.createTestUser("root", models.RoleSuperadmin, nil)
	admin := suite.createTestUser("chief", models.RoleAdmin, nil)

	cookies := suite.login("root")

	form := url.Values{}
	form.Set("username", "newworker")
	form.Set("password", "longenough")
	form.Set("role", "user")
	form.Set("assigned_admin", fmt.Sprintf("%d", admin.ID))
	w := suite.request(http.MethodPost, "/console/users/create", form, cookies)

	suite.Equal(http.StatusFound, w.Code)
	suite.Equal("/console/users", w.Header().Get("Location"))

	var created models.User
	suite.Require().NoError(suite.db.Where("username = ?", "newworker").First(&created).Error)
	suite.Equal(models.RoleUser, created.Role)
	suite.Require().NotNil(created.AssignedAdminID)
	suite.Equal(admin.ID, *created.AssignedAdminID)
}

func (suite *ConsoleHandlerTestSuite) TestCreateUser_RejectsNonAdminAssignment() {
	suite.createTestUser("root", models.RoleSuperadmin, nil)
	worker := suite.createTestUser("worker", models.RoleUser, nil)

	cookies := suite.login("root")

	form := url.Values{}
	form.Set("username", "newworker")
	form.Set("password", "longenough")
	form.Set("role", "user")
	form.Set("assigned_admin", fmt.Sprintf("%d", worker.ID))
	w := suite.request(http.MethodPost, "/console/users/create", form, cookies)

	// Back to the form with a flash error, nothing created
	suite.Equal(http.StatusFound, w.Code)
	suite.Equal("/console/users/create", w.Header().Get("Location"))

	var count int64
	suite.db.Model(&models.User{}).Where("username = ?", "newworker").Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *ConsoleHandlerTestSuite) TestDeleteUser_SelfDeletionRejected() {
	root := suite.createTestUser("root", models.RoleSuperadmin, nil)

	cookies := suite.login("root")
	w := suite.request(http.MethodPost, fmt.Sprintf("/console/users/%d/delete", root.ID), url.Values{}, cookies)

	suite.Equal(http.StatusFound, w.Code)

	var count int64
	suite.db.Model(&models.User{}).Where("id = ?", root.ID).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *ConsoleHandlerTestSuite) TestDeleteUser_CascadesTasks() {
	suite.createTestUser("root", models.RoleSuperadmin, nil)
	admin := suite.createTestUser("chief", models.RoleAdmin, nil)
	worker := suite.createTestUser("worker", models.RoleUser, &admin.ID)

	suite.createTestTask("assigned", worker.ID, admin.ID)
	suite.createTestTask("unrelated", admin.ID, admin.ID)

	cookies := suite.login("root")
	w := suite.request(http.MethodPost, fmt.Sprintf("/console/users/%d/delete", worker.ID), url.Values{}, cookies)
	suite.Equal(http.StatusFound, w.Code)

	var userCount int64
	suite.db.Model(&models.User{}).Where("id = ?", worker.ID).Count(&userCount)
	suite.Equal(int64(0), userCount)

	var taskCount int64
	suite.db.Model(&models.Task{}).Count(&taskCount)
	suite.Equal(int64(1), taskCount)
}

func (suite *ConsoleHandlerTestSuite) TestTaskDetail_DeniedForNonManagingAdmin() {
	adminA := suite.createTestUser("chief-a", models.RoleAdmin, nil)
	suite.createTestUser("chief-b", models.RoleAdmin, nil)
	worker := suite.createTestUser("worker", models.RoleUser, &adminA.ID)
	task := suite.createTestTask("sensitive", worker.ID, adminA.ID)

	cookiesA := suite.login("chief-a")
	w := suite.request(http.MethodGet, fmt.Sprintf("/console/tasks/%d", task.ID), nil, cookiesA)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "sensitive")

	cookiesB := suite.login("chief-b")
	w = suite.request(http.MethodGet, fmt.Sprintf("/console/tasks/%d", task.ID), nil, cookiesB)
	suite.Equal(http.StatusFound, w.Code)
	suite.Equal("/console/tasks", w.Header().Get("Location"))
}

func (suite *ConsoleHandlerTestSuite) TestCreateTask_AdminForm() {
	admin := suite.createTestUser("chief", models.RoleAdmin, nil)
	worker := suite.createTestUser("worker", models.RoleUser, &admin.ID)

	cookies := suite.login("chief")

	form := url.Values{}
	form.Set("title", "new task")
	form.Set("description", "details")
	form.Set("assigned_to", fmt.Sprintf("%d", worker.ID))
	form.Set("due_date", time.Now().Add(48*time.Hour).Format("2006-01-02T15:04"))
	w := suite.request(http.MethodPost, "/console/tasks/create", form, cookies)

	suite.Equal(http.StatusFound, w.Code)
	suite.Equal("/console/tasks", w.Header().Get("Location"))

	var task models.Task
	suite.Require().NoError(suite.db.Where("title = ?", "new task").First(&task).Error)
	suite.Equal(worker.ID, task.AssigneeID)
	suite.Equal(admin.ID, task.CreatorID)
}

func TestConsoleHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ConsoleHandlerTestSuite))
}
