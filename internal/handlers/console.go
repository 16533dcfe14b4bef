package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/torisawa/task-assignment-api/internal/constants"
	"github.com/torisawa/task-assignment-api/internal/middleware"
	"github.com/torisawa/task-assignment-api/internal/models"
	"github.com/torisawa/task-assignment-api/internal/services"
)

// ConsoleHandler serves the server-rendered admin console. It applies the
// same permission rules as the API over HTML forms and session cookies.
type ConsoleHandler struct {
	authService *services.AuthService
	userService *services.UserService
	taskService *services.TaskService
}

// NewConsoleHandler creates a new ConsoleHandler.
func NewConsoleHandler(authService *services.AuthService, userService *services.UserService, taskService *services.TaskService) *ConsoleHandler {
	return &ConsoleHandler{
		authService: authService,
		userService: userService,
		taskService: taskService,
	}
}

// ShowLogin renders the console login form
func (h *ConsoleHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Flash": popFlash(c),
	})
}

// Login authenticates an admin or superadmin and starts a session
func (h *ConsoleHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.authService.ConsoleLogin(services.LoginInput{
		Username: username,
		Password: password,
	})
	if err != nil {
		setFlash(c, "Invalid credentials or insufficient permissions.")
		c.Redirect(http.StatusFound, "/console/login")
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		setFlash(c, "Failed to start session.")
		c.Redirect(http.StatusFound, "/console/login")
		return
	}

	c.Redirect(http.StatusFound, "/console/dashboard")
}

// Logout ends the console session
func (h *ConsoleHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/console/login")
}

// Dashboard renders role-scoped statistics and recent tasks
func (h *ConsoleHandler) Dashboard(c *gin.Context) {
	user, ok := middleware.GetConsoleUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/console/login")
		return
	}

	stats, err := h.userService.GetDashboardStats(user)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "dashboard.html", gin.H{
			"User":  user,
			"Flash": "Failed to load dashboard.",
		})
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"User":  user,
		"Stats": stats,
		"Flash": popFlash(c),
	})
}

// UsersList renders the user management page (superadmin only)
func (h *ConsoleHandler) UsersList(c *gin.Context) {
	user, _ := middleware.GetConsoleUser(c)

	users, admins, err := h.userService.ListUsersAndAdmins()
	if err != nil {
		setFlash(c, "Failed to load users.")
		c.Redirect(http.StatusFound, "/console/dashboard")
		return
	}

	c.HTML(http.StatusOK, "users.html", gin.H{
		"User":   user,
		"Users":  users,
		"Admins": admins,
		"Flash":  popFlash(c),
	})
}

// ShowCreateUser renders the create-user form (superadmin only)
func (h *ConsoleHandler) ShowCreateUser(c *gin.Context) {
	user, _ := middleware.GetConsoleUser(c)

	admins, err := h.userService.ListAdmins()
	if err != nil {
		setFlash(c, "Failed to load admins.")
		c.Redirect(http.StatusFound, "/console/users")
		return
	}

	c.HTML(http.StatusOK, "create_user.html", gin.H{
		"User":   user,
		"Admins": admins,
		"Flash":  popFlash(c),
	})
}

// CreateUser handles the create-user form post (superadmin only)
func (h *ConsoleHandler) CreateUser(c *gin.Context) {
	input := services.CreateUserInput{
		Username:  c.PostForm("username"),
		Email:     c.PostForm("email"),
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Password:  c.PostForm("password"),
		Role:      models.Role(c.DefaultPostForm("role", string(models.RoleUser))),
	}

	if adminIDStr := c.PostForm("assigned_admin"); adminIDStr != "" {
		adminID, err := strconv.ParseUint(adminIDStr, 10, 64)
		if err != nil {
			setFlash(c, "Invalid assigned admin.")
			c.Redirect(http.StatusFound, "/console/users/create")
			return
		}
		input.AssignedAdminID = &adminID
	}

	if _, err := h.userService.CreateUser(input); err != nil {
		setFlash(c, "Error creating user: "+userErrorMessage(err))
		c.Redirect(http.StatusFound, "/console/users/create")
		return
	}

	setFlash(c, "User created successfully.")
	c.Redirect(http.StatusFound, "/console/users")
}

// DeleteUser handles the delete-user form post (superadmin only)
func (h *ConsoleHandler) DeleteUser(c *gin.Context) {
	actor, _ := middleware.GetConsoleUser(c)

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		setFlash(c, "Invalid user ID.")
		c.Redirect(http.StatusFound, "/console/users")
		return
	}

	if err := h.userService.DeleteUser(actor.ID, targetID); err != nil {
		setFlash(c, userErrorMessage(err))
		c.Redirect(http.StatusFound, "/console/users")
		return
	}

	setFlash(c, "User deleted successfully.")
	c.Redirect(http.StatusFound, "/console/users")
}

// TasksList renders the role-scoped task list
func (h *ConsoleHandler) TasksList(c *gin.Context) {
	user, _ := middleware.GetConsoleUser(c)

	tasks, err := h.taskService.ListVisibleTasks(user)
	if err != nil {
		setFlash(c, "Failed to load tasks.")
		c.Redirect(http.StatusFound, "/console/dashboard")
		return
	}

	c.HTML(http.StatusOK, "tasks.html", gin.H{
		"User":  user,
		"Tasks": tasks,
		"Flash": popFlash(c),
	})
}

// ShowCreateTask renders the create-task form
func (h *ConsoleHandler) ShowCreateTask(c *gin.Context) {
	user, _ := middleware.GetConsoleUser(c)

	assignable, err := h.userService.ListAssignableUsers(user)
	if err != nil {
		setFlash(c, "Failed to load users.")
		c.Redirect(http.StatusFound, "/console/tasks")
		return
	}

	c.HTML(http.StatusOK, "create_task.html", gin.H{
		"User":  user,
		"Users": assignable,
		"Flash": popFlash(c),
	})
}

// CreateTask handles the create-task form post
func (h *ConsoleHandler) CreateTask(c *gin.Context) {
	user, _ := middleware.GetConsoleUser(c)

	assigneeID, err := strconv.ParseUint(c.PostForm("assigned_to"), 10, 64)
	if err != nil {
		setFlash(c, "Error creating task: an assignee is required.")
		c.Redirect(http.StatusFound, "/console/tasks/create")
		return
	}

	dueDate, err := parseDueDate(c.PostForm("due_date"))
	if err != nil {
		setFlash(c, "Error creating task: invalid due date.")
		c.Redirect(http.StatusFound, "/console/tasks/create")
		return
	}

	_, err = h.taskService.CreateTask(user, services.CreateTaskInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		AssigneeID:  assigneeID,
		DueDate:     dueDate,
	})
	if err != nil {
		setFlash(c, "Error creating task: "+taskErrorMessage(err))
		c.Redirect(http.StatusFound, "/console/tasks/create")
		return
	}

	setFlash(c, "Task created successfully.")
	c.Redirect(http.StatusFound, "/console/tasks")
}

// TaskDetail renders a task's detail page, including its completion report
// when the viewer is allowed to see it
func (h *ConsoleHandler) TaskDetail(c *gin.Context) {
	user, _ := middleware.GetConsoleUser(c)

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		setFlash(c, "Invalid task ID.")
		c.Redirect(http.StatusFound, "/console/tasks")
		return
	}

	task, err := h.taskService.GetTaskDetail(user, taskID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			setFlash(c, "Task not found.")
		case errors.Is(err, services.ErrReportAccessDenied):
			setFlash(c, "Access denied.")
		default:
			setFlash(c, "Failed to load task.")
		}
		c.Redirect(http.StatusFound, "/console/tasks")
		return
	}

	c.HTML(http.StatusOK, "task_detail.html", gin.H{
		"User":  user,
		"Task":  task,
		"Flash": popFlash(c),
	})
}

func parseDueDate(value string) (time.Time, error) {
	// HTML datetime-local inputs omit seconds; plain date inputs omit time
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format")
}

func userErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrUsernameRequired),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidAssignedAdmin),
		errors.Is(err, services.ErrCannotDeleteSelf),
		errors.Is(err, services.ErrUserNotFound):
		return err.Error()
	default:
		return "an unexpected error occurred"
	}
}

func taskErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrNotManagedUser):
		return err.Error()
	default:
		return "an unexpected error occurred"
	}
}

func setFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.Set(constants.SessionKeyFlash, message)
	_ = session.Save()
}

func popFlash(c *gin.Context) string {
	session := sessions.Default(c)
	value := session.Get(constants.SessionKeyFlash)
	if value == nil {
		return ""
	}
	session.Delete(constants.SessionKeyFlash)
	_ = session.Save()
	message, _ := value.(string)
	return message
}
