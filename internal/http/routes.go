package http

import (
	"taskboard/internal/config"
	"taskboard/internal/directory"
	"taskboard/internal/http/handlers"
	"taskboard/internal/http/middleware"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires repositories, services and handlers onto the
// engine. The validator decides how callers are authenticated; everything
// under /api requires it.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, validator *middleware.Validator, version string) {
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	hub := ws.NewHub()
	publisher := ws.NewPublisher(hub)

	dir := directory.NewClient(cfg.DirectoryBaseURL, cfg.DirectoryToken)
	users := service.NewUserService(userRepo, dir)
	notifications := service.NewNotificationService(notificationRepo, userRepo, publisher)
	tasks := service.NewTaskService(taskRepo, users, notifications)
	dashboard := service.NewDashboardService(tasks, users)

	h := handlers.NewHandler(users, tasks, notifications, dashboard)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, validator)

	// Legacy /api routes for backward compatibility
	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	api.GET("/health", healthHandler.Health)
	registerAPIRoutes(api, h, validator)

	// WebSocket notification channel; token arrives via query because
	// browsers cannot set headers on the upgrade request.
	r.GET("/ws", validator.AuthTokenQuery(), h.WS(hub))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, validator *middleware.Validator) {
	api.Use(validator.Auth())

	// Users
	api.GET("/users", h.SearchUsers)
	api.GET("/users/me", h.Me)
	api.PATCH("/users/me", h.UpdateMe)
	api.POST("/users/provision", h.ProvisionUser)
	api.GET("/users/:externalId", h.GetUserByExternalID)

	// Tasks
	api.GET("/tasks", h.ListTasks)
	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks/:id", h.GetTask)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
	api.DELETE("/tasks/:id", h.DeleteTask)

	// Notifications
	api.GET("/notifications", h.ListNotifications)
	api.POST("/notifications", h.CreateNotification)
	api.GET("/notifications/unread-count", h.UnreadCount)
	api.POST("/notifications/readAll", h.MarkAllNotificationsRead)
	api.POST("/notifications/:id/read", h.MarkNotificationRead)

	// Dashboard
	api.GET("/dashboard", h.GetDashboard)
}
