package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/http/middleware"
	"taskboard/internal/logger"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler wires the HTTP boundary to the service layer.
type Handler struct {
	Users         *service.UserService
	Tasks         *service.TaskService
	Notifications *service.NotificationService
	Dashboard     *service.DashboardService
}

func NewHandler(users *service.UserService, tasks *service.TaskService, notifications *service.NotificationService, dashboard *service.DashboardService) *Handler {
	return &Handler{
		Users:         users,
		Tasks:         tasks,
		Notifications: notifications,
		Dashboard:     dashboard,
	}
}

// externalID returns the authenticated caller's identity or writes a 401.
func externalID(c *gin.Context) (string, bool) {
	id, ok := middleware.ExternalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "not authenticated"})
	}
	return id, ok
}

// writeError maps service error kinds to HTTP statuses with the uniform
// {success:false, error} body. Unknown errors become an opaque 500.
func writeError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	default:
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// parseDate accepts date-only or RFC3339 timestamps; dates come back UTC.
func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.New("invalid date: " + v)
}
