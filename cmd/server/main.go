package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/torisawa/task-assignment-api/internal/config"
	"github.com/torisawa/task-assignment-api/internal/constants"
	"github.com/torisawa/task-assignment-api/internal/database"
	"github.com/torisawa/task-assignment-api/internal/handlers"
	"github.com/torisawa/task-assignment-api/internal/middleware"
	"github.com/torisawa/task-assignment-api/internal/repository"
	"github.com/torisawa/task-assignment-api/internal/services"
	"github.com/torisawa/task-assignment-api/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed the bootstrap superadmin when none exists
	if err := database.SeedSuperadmin(cfg); err != nil {
		log.Fatalf("Failed to seed superadmin: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()
	r.LoadHTMLGlob("web/templates/*.html")

	// Setup session middleware with Redis (used by the admin console)
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	authService := services.NewAuthService(userRepo, tokens)
	taskService := services.NewTaskService(taskRepo, userRepo)
	userService := services.NewUserService(userRepo, taskRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService, authService)
	consoleHandler := handlers.NewConsoleHandler(authService, userService, taskService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Assignment API is running",
		})
	})

	// Token-authenticated API routes
	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.RequireToken(tokens), authHandler.GetCurrentUser)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireToken(tokens))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.GET("/:id/report", taskHandler.GetReport)
		}
	}

	// Session-authenticated admin console routes
	console := r.Group("/console")
	{
		console.GET("/login", consoleHandler.ShowLogin)
		console.POST("/login", consoleHandler.Login)

		authed := console.Group("")
		authed.Use(middleware.RequireConsoleUser(authService))
		{
			authed.GET("/logout", consoleHandler.Logout)
			authed.GET("/dashboard", consoleHandler.Dashboard)
			authed.GET("", consoleHandler.Dashboard)

			authed.GET("/tasks", consoleHandler.TasksList)
			authed.GET("/tasks/create", consoleHandler.ShowCreateTask)
			authed.POST("/tasks/create", consoleHandler.CreateTask)
			authed.GET("/tasks/:id", consoleHandler.TaskDetail)

			super := authed.Group("/users")
			super.Use(middleware.RequireSuperadmin())
			{
				super.GET("", consoleHandler.UsersList)
				super.GET("/create", consoleHandler.ShowCreateUser)
				super.POST("/create", consoleHandler.CreateUser)
				super.POST("/:id/delete", consoleHandler.DeleteUser)
			}
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
