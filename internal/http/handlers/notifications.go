package handlers

import (
	"fmt"
	"net/http"

	"taskboard/internal/domain"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListNotifications handles GET /notifications, newest first.
func (h *Handler) ListNotifications(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}

	result, err := h.Notifications.GetByUser(
		c.Request.Context(), id,
		queryInt(c, "page", 1),
		queryInt(c, "pageSize", domain.DefaultPageSize),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateNotification handles POST /notifications.
func (h *Handler) CreateNotification(c *gin.Context) {
	if _, ok := externalID(c); !ok {
		return
	}

	var req struct {
		RecipientUserID string `json:"recipientUserId"`
		RelatedTaskID   string `json:"relatedTaskId"`
		Title           string `json:"title"`
		Message         string `json:"message"`
		Type            string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: invalid request body", domain.ErrValidation))
		return
	}

	recipientID, err := uuid.Parse(req.RecipientUserID)
	if err != nil {
		writeError(c, fmt.Errorf("%w: invalid recipientUserId", domain.ErrValidation))
		return
	}

	in := service.CreateNotificationInput{
		RecipientUserID: recipientID,
		Title:           req.Title,
		Message:         req.Message,
		Type:            domain.NotificationType(req.Type),
	}
	if req.RelatedTaskID != "" {
		taskID, err := uuid.Parse(req.RelatedTaskID)
		if err != nil {
			writeError(c, fmt.Errorf("%w: invalid relatedTaskId", domain.ErrValidation))
			return
		}
		in.RelatedTaskID = &taskID
	}

	notification, err := h.Notifications.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, notification)
}

// MarkNotificationRead handles POST /notifications/:id/read. Already-read
// and unknown ids are a no-op.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if _, ok := externalID(c); !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, fmt.Errorf("%w: invalid notification id", domain.ErrValidation))
		return
	}

	if err := h.Notifications.MarkAsRead(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /notifications/readAll.
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}

	if err := h.Notifications.MarkAllAsRead(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnreadCount handles GET /notifications/unread-count.
func (h *Handler) UnreadCount(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}

	count, err := h.Notifications.GetUnreadCount(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
