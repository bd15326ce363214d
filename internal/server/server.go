// Package server exposes the HTTP surface: a gin engine with an
// explicit middleware chain (request logging, error mapping, auth) in
// front of the resource handlers.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/config"
	"task-manager/internal/service"
)

const apiVersion = "1.0.0"

// Server wires services into HTTP handlers. All dependencies are
// injected; the package keeps no global state.
type Server struct {
	auth       *service.AuthService
	tasks      *service.TaskService
	categories *service.CategoryService
	logger     *slog.Logger
	engine     *gin.Engine
}

func New(cfg config.Config, authSvc *service.AuthService, taskSvc *service.TaskService, categorySvc *service.CategoryService, logger *slog.Logger) *Server {
	s := &Server{
		auth:       authSvc,
		tasks:      taskSvc,
		categories: categorySvc,
		logger:     logger,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))
	engine.Use(s.requestLogger())
	engine.Use(corsMiddleware(cfg.CORSOrigins))
	engine.Use(s.errorMapper())

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	})

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "task manager API is running",
			"version": apiVersion,
		})
	})

	api := engine.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/refresh", s.handleRefresh)
		authGroup.GET("/me", s.requireAuth(), s.handleMe)
	}

	taskGroup := api.Group("/tasks", s.requireAuth())
	{
		taskGroup.GET("/", s.handleListTasks)
		taskGroup.POST("/", s.handleCreateTask)
		taskGroup.GET("/stats", s.handleTaskStats)
		taskGroup.GET("/:id", s.handleGetTask)
		taskGroup.PUT("/:id", s.handleUpdateTask)
		taskGroup.DELETE("/:id", s.handleDeleteTask)
	}

	categoryGroup := api.Group("/categories", s.requireAuth())
	{
		categoryGroup.GET("/", s.handleListCategories)
		categoryGroup.POST("/", s.handleCreateCategory)
		categoryGroup.PUT("/:id", s.handleUpdateCategory)
		categoryGroup.DELETE("/:id", s.handleDeleteCategory)
		categoryGroup.GET("/:id/tasks", s.handleCategoryTasks)
	}

	s.engine = engine
	return s
}

// Handler returns the root http.Handler for serving or testing.
func (s *Server) Handler() http.Handler {
	return s.engine
}
